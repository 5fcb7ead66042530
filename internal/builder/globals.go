package builder

import (
	"runtime"
	"sync/atomic"

	"github.com/gookit/color"
)

// isCriticalAtomic is 1 while an operation that must not be interrupted
// mid-way (rpmbuild, asar repack) is running. The signal handler blocks
// the first Ctrl+C during that window.
var isCriticalAtomic atomic.Int32

// Global variables
var (
	WorkDir      string // scratch tree recreated on every run
	CacheDir     string // persistent download cache
	ToolchainDir string // local node/electron installs
	StagingDir   string // install-image tree consumed by the package step
	LogFile      string // build log for the 'log' command

	PackageName = "claude-desktop"
	Maintainer  string
	Summary     string

	Debug      bool
	ConfigFile = "/etc/claude-desktop-builder.conf"

	// Patch timing tunables. The upstream tray handler needs a re-entry
	// guard and a settle delay after the DBus menu teardown; both values
	// are empirical and therefore kept configurable.
	TrayGuardResetMs = 500
	DBusSettleMs     = 50

	NodeMinMajor    = 18
	NodeVersion     = "20.18.1"
	ElectronVersion = ""

	version   = "dev"     // overridden at build time
	buildDate = "unknown" // overridden at build time
	hostArch  = runtime.GOARCH

	// Global executors (assigned in Main)
	UserExec *Executor
	RootExec *Executor
)

// color helpers
var (
	colInfo    = color.Info
	colWarn    = color.Warn
	colError   = color.Error
	colSuccess = color.HEX("#1976D2")
	colArrow   = color.HEX("#FFEB3B")
)
