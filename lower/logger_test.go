package lower

import (
	"testing"

	"github.com/wippyai/exprtree/lower/internal/async"
)

func TestSetLogger_Nil(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	SetLogger(nil)
	if Logger() == nil {
		t.Fatal("Logger() = nil after SetLogger(nil)")
	}
	if async.Logger() == nil {
		t.Fatal("state machine logger = nil after SetLogger(nil)")
	}
	Logger().Debug("discarded")
	async.Logger().Warn("discarded")
}
