package store_test

import (
	"log/slog"

	"github.com/aussiebroadwan/tabsession/pkg/slogx"
)

func discardLogger() *slog.Logger {
	return slogx.Discard()
}
