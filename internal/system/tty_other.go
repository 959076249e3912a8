//go:build !linux

package system

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// AcquireConsole needs a Linux VT; elsewhere it only logs.
func AcquireConsole(l logger) (release func()) {
	l.Infof("tty", "console control only available on linux")
	return func() {}
}
