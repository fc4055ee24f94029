package config_test

import (
	"context"
	"testing"

	"github.com/Erokopotomus/survivor-fantasy-tracker/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.DatabaseDSN, convey.ShouldNotBeEmpty)
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			convey.So(cfg.SuggestionModel, convey.ShouldNotBeEmpty)
			convey.So(cfg.SuggestionTimeoutSeconds, convey.ShouldEqual, 60)
		})
	})
}
