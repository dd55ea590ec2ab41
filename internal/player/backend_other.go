//go:build !unix

package player

import (
	"fmt"
	"os"

	"github.com/desertthunder/musicx/internal/shared"
)

var errProcessDone = os.ErrProcessDone

func suspend(*os.Process) error {
	return fmt.Errorf("%w: pause is only supported on unix", shared.ErrNotImplemented)
}

func resume(*os.Process) error { return nil }
