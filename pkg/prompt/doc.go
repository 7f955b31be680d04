// Package prompt runs the guided fill in a terminal: the guide's messages are
// printed and each awaited field is asked for through a PromptDriver.
package prompt
