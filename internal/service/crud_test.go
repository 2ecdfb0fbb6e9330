package service

import (
	"io"
	"log/slog"

	"github.com/tnguyen/storefront/internal/domain"
	"github.com/tnguyen/storefront/internal/store/storetest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newUserMemRepo() *storetest.Repo[domain.User] {
	return storetest.NewUsers()
}

func newProductMemRepo() *storetest.Repo[domain.Product] {
	return storetest.NewProducts()
}
