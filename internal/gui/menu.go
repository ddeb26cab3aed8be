package gui

import (
	"fmt"
	"strings"

	"github.com/thiagokokada/storygraph/internal/buildinfo"
	"github.com/thiagokokada/storygraph/internal/gitexport"
	. "modernc.org/tk9.0"
)

func (a *Controller) initMenubar() {
	menubar := Menu(Tearoff(false))

	fileMenu := menubar.Menu(Tearoff(false))
	fileMenu.AddCommand(Lbl("Reload Story"), Command(a.reloadStory))
	fileMenu.AddCommand(Lbl("Export as Git Repository..."), Command(a.promptGitExport))
	fileMenu.AddSeparator()
	fileMenu.AddCommand(Lbl("Quit"), Command(func() { Destroy(App) }))
	menubar.AddCascade(Lbl("File"), Mnu(fileMenu))

	viewMenu := menubar.Menu(Tearoff(false))
	viewMenu.AddCommand(Lbl("Collapse All"), Command(a.collapseAll))
	menubar.AddCascade(Lbl("View"), Mnu(viewMenu))

	helpMenu := menubar.Menu(Tearoff(false))
	helpMenu.AddCommand(Lbl("Keyboard Shortcuts"), Command(a.showShortcutsDialog))
	helpMenu.AddCommand(Lbl("About "+buildinfo.Name), Command(a.showAboutDialog))
	menubar.AddCascade(Lbl("Help"), Mnu(helpMenu))

	App.Configure(Mnu(menubar))
}

func (a *Controller) promptGitExport() {
	sess := a.story.session
	if sess == nil {
		return
	}
	dir := strings.TrimSpace(ChooseDirectory(
		Parent(App),
		Title("Select an empty directory"),
		Mustexist(true),
	))
	if dir == "" {
		return
	}
	res, err := gitexport.ExportDir(sess.Graph, dir)
	if err != nil {
		MessageBox(
			Parent(App),
			Title("Export as Git Repository"),
			Icon("error"),
			Msg(fmt.Sprintf("Unable to export story:\n\n%v", err)),
			Type("ok"),
		)
		return
	}
	a.setStatus(fmt.Sprintf("Exported %d commits and %d branches to %s", res.Commits, len(res.Refs), dir))
}

func (a *Controller) showAboutDialog() {
	message := fmt.Sprintf("%s %s", buildinfo.Name, buildinfo.VersionWithTags())
	MessageBox(
		Parent(App),
		Title("About "+buildinfo.Name),
		Icon("info"),
		Msg(message),
		Type("ok"),
	)
}
