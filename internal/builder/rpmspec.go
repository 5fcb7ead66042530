package builder

import (
	"fmt"
	"strings"
	"text/template"
)

// Generated text artifacts for the package step: the desktop entry, the
// launcher script and the RPM spec. All three are rendered from
// text/template so the package parameters stay in one place.

var desktopEntryTmpl = template.Must(template.New("desktop").Parse(`[Desktop Entry]
Name=Claude
Comment={{.Description}}
Exec=/usr/bin/{{.Name}} %u
Icon={{.Name}}
Type=Application
Terminal=false
Categories=Office;Utility;Network;
MimeType=x-scheme-handler/claude;
StartupWMClass=Claude
`))

// The launcher probes for a Wayland session and picks the matching ozone
// flags; CLAUDE_BACKEND overrides the detection. Output goes to a log the
// builder's 'log' command knows nothing about -- it belongs to the
// installed app, not the build.
var launcherTmpl = template.Must(template.New("launcher").Parse(`#!/bin/bash
set -u

LOG_DIR="${XDG_CACHE_HOME:-$HOME/.cache}/{{.Name}}"
mkdir -p "$LOG_DIR"
LOG_FILE="$LOG_DIR/launcher.log"

BACKEND="${CLAUDE_BACKEND:-}"
if [ -z "$BACKEND" ]; then
    if [ -n "${WAYLAND_DISPLAY:-}" ]; then
        BACKEND=wayland
    else
        BACKEND=x11
    fi
fi

FLAGS=()
if [ "$BACKEND" = "wayland" ]; then
    FLAGS+=(--ozone-platform=wayland --enable-features=UseOzonePlatform,WaylandWindowDecorations)
else
    FLAGS+=(--ozone-platform=x11)
fi

echo "$(date -Is) launching with backend=$BACKEND" >> "$LOG_FILE"
exec /usr/lib/{{.Name}}/electron/electron "${FLAGS[@]}" "$@" >> "$LOG_FILE" 2>&1
`))

// rpmSpecTmpl embeds the file list and the post-install sandbox fix.
// AutoReqProv is off because the bundled Electron carries its own
// libraries; letting rpm scan them would invent dependencies no distro
// package provides.
var rpmSpecTmpl = template.Must(template.New("spec").Parse(`Name:           {{.Name}}
Version:        {{.Version}}
Release:        1
Summary:        {{.Description}}
License:        Proprietary
URL:            https://claude.ai
BuildArch:      {{.Arch}}
Packager:       {{.Maintainer}}
AutoReqProv:    no

%description
{{.Description}}
Repackaged from the official Windows build for Linux.

%files
/usr/bin/{{.Name}}
/usr/lib/{{.Name}}/
/usr/share/applications/{{.Name}}.desktop
{{- range .IconPaths}}
{{.}}
{{- end}}

%post
if [ -f /usr/lib/{{.Name}}/electron/chrome-sandbox ]; then
    chown root:root /usr/lib/{{.Name}}/electron/chrome-sandbox
    chmod 4755 /usr/lib/{{.Name}}/electron/chrome-sandbox
fi

%changelog
`))

type specData struct {
	Name        string
	Version     string
	Arch        string
	Maintainer  string
	Description string
	IconPaths   []string
}

func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering %s template: %w", tmpl.Name(), err)
	}
	return b.String(), nil
}
