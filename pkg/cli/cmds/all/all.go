// Package all imports all command providers.
package all

import (
	_ "github.com/radioclk/si514.go/pkg/cli/cmds/bus"
	_ "github.com/radioclk/si514.go/pkg/cli/cmds/clock"
)
