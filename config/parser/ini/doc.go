// Package ini provides an INI parser implementation for the config package,
// built on gopkg.in/ini.v1.
package ini
