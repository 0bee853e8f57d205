package cmd

// HELP_TEMPL lists the commands and global options, then says where
// settings come from.
const HELP_TEMPL = `{{.Name}} - {{.Usage}}

Usage:
  {{if .UsageText}}{{.UsageText}}{{else}}{{.HelpName}} [global options] <command> [arguments...]{{end}}
{{.Description}}{{if .VisibleCommands}}
Commands:{{range .VisibleCommands}}
  {{join .Names ", "}}{{"\t"}}{{.Usage}}{{end}}{{end}}{{if .VisibleFlags}}

Global Options:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

Settings are read from config.yaml in the config directory, then from
CONVO_ environment variables, then from the options above.
Run "{{.HelpName}} help <command>" to see a command's options.

`

// CMD_HELP_TEMPL prints a command's description, usage line and options.
// UsageText carries the command path without the binary name.
const CMD_HELP_TEMPL = `{{if .Description}}{{.Description}}{{else}}{{.HelpName}}: {{.Usage}}

{{end}}Usage:
  {{if .UsageText}}convo {{.UsageText}}{{else}}{{.HelpName}}{{if .VisibleFlags}} [options]{{end}}{{end}}{{if .VisibleFlags}}

Options:{{range .VisibleFlags}}
  {{.}}{{end}}{{end}}

`
