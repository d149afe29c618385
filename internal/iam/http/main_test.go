package http

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "gatekeeper-http-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}
