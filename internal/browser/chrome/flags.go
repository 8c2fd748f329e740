// Package chrome holds what both automation backends need to launch and query
// Chrome the same way: command line switches, profile preferences and the page
// scripts used for non-blocking element probes.
package chrome

import (
	"strings"

	"github.com/xkilldash9x/saucecheck/internal/config"
)

// Flag is one Chrome command line switch. Value is either a bool (true adds
// "--name", false removes a default) or a string ("--name=value").
type Flag struct {
	Name  string
	Value interface{}
}

// baseFlags suppress browser UI that can cover the page under test, including
// the "controlled by automated software" banner.
var baseFlags = []Flag{
	{"no-first-run", true},
	{"no-default-browser-check", true},
	{"disable-infobars", true},
	{"disable-popup-blocking", true},
	{"disable-notifications", true},
	{"disable-save-password-bubble", true},
	{"disable-autofill-keyboard-accessory-view", true},
	{"disable-features", "PasswordLeakDetection,PasswordCheck,PasswordChange,AutofillServerCommunication,Translate"},
	{"disable-blink-features", "AutomationControlled"},
	{"enable-automation", false},
	{"password-store", "basic"},
	{"use-mock-keychain", true},
	{"disable-dev-shm-usage", true},
}

// Flags returns the switches for a browser configured by cfg, in the order
// they should be applied. Later entries win, so user args come last.
func Flags(cfg config.BrowserConfig) []Flag {
	flags := append([]Flag(nil), baseFlags...)

	if cfg.Headless {
		flags = append(flags, Flag{"headless", "new"}, Flag{"disable-gpu", true}, Flag{"window-size", "1920,1080"})
	} else {
		flags = append(flags, Flag{"headless", false})
	}
	if cfg.Maximize {
		flags = append(flags, Flag{"start-maximized", true})
	}
	if cfg.NoSandbox {
		flags = append(flags, Flag{"no-sandbox", true})
	}

	for _, arg := range cfg.Args {
		flags = append(flags, ParseArg(arg))
	}
	return flags
}

// ParseArg turns "--name=value" or "name" into a Flag.
func ParseArg(arg string) Flag {
	arg = strings.TrimLeft(arg, "-")
	if key, value, found := strings.Cut(arg, "="); found {
		return Flag{Name: key, Value: value}
	}
	return Flag{Name: arg, Value: true}
}

// Lookup returns the effective value of name in flags.
func Lookup(flags []Flag, name string) (interface{}, bool) {
	var (
		v     interface{}
		found bool
	)
	for _, f := range flags {
		if f.Name == name {
			v, found = f.Value, true
		}
	}
	return v, found
}
