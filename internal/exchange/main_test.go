package exchange

import (
	"os"
	"testing"

	"signal_bot/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.InitNop()
	os.Exit(m.Run())
}
