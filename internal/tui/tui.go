package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Joseda-hg/tasktracker/internal/model"
	"github.com/Joseda-hg/tasktracker/internal/service"
	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"
)

const (
	viewHeader   = "header"
	viewFooter   = "footer"
	viewProjects = "projects"
	viewTasks    = "tasks"
	viewDetails  = "details"
	viewForm     = "form"
)

type UI struct {
	projects *service.ProjectService
	tasks    *service.TaskService
	logger   *slog.Logger
	gui      *gocui.Gui
	now      func() time.Time

	statuses []string

	projectList     []model.Project
	taskList        []model.Task
	overview        []model.ProjectWithTasks
	showOverview    bool
	selectedProject int
	selectedTask    int
	focus           string

	form       *formState
	formEditor *formEditor
	status     string
}

type formEditor struct {
	ui *UI
}

func newUI(projects *service.ProjectService, tasks *service.TaskService, logger *slog.Logger) *UI {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ui := &UI{
		projects: projects,
		tasks:    tasks,
		logger:   logger,
		now:      time.Now,
		statuses: statusNames(projects.Rules().Statuses),
		focus:    viewProjects,
	}
	ui.formEditor = &formEditor{ui: ui}
	return ui
}

// Run shows the interactive menu until the user quits.
func Run(projects *service.ProjectService, tasks *service.TaskService, logger *slog.Logger) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := newUI(projects, tasks, logger)
	ui.gui = gui
	gui.Mouse = true

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}
	if err := ui.load(); err != nil {
		return err
	}

	if err := gui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}

	return nil
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	global := []struct {
		key     interface{}
		handler func(*gocui.Gui, *gocui.View) error
	}{
		{gocui.KeyCtrlC, u.quit},
		{'q', u.quit},
		{'1', u.createProject},
		{'2', u.listProjects},
		{'3', u.editProject},
		{'4', u.deleteProject},
		{'5', u.createTask},
		{'6', u.listTasks},
		{'7', u.editTask},
		{'8', u.changeStatus},
		{'9', u.deleteTask},
		{'0', u.toggleOverview},
		{'r', u.reload},
		{gocui.KeyTab, u.switchFocus},
	}
	for _, binding := range global {
		if err := gui.SetKeybinding("", binding.key, gocui.ModNone, binding.handler); err != nil {
			return err
		}
	}

	for _, name := range []string{viewProjects, viewTasks} {
		if err := gui.SetKeybinding(name, gocui.KeyArrowDown, gocui.ModNone, u.moveDown); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, 'j', gocui.ModNone, u.moveDown); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.KeyArrowUp, gocui.ModNone, u.moveUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, 'k', gocui.ModNone, u.moveUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.MouseWheelUp, gocui.ModNone, u.scrollUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.MouseWheelDown, gocui.ModNone, u.scrollDown); err != nil {
			return err
		}
	}
	if err := gui.SetKeybinding(viewProjects, gocui.KeyEnter, gocui.ModNone, u.listTasks); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewTasks, gocui.KeyEnter, gocui.ModNone, u.editTask); err != nil {
		return err
	}

	if err := gui.SetKeybinding(viewForm, gocui.KeyEnter, gocui.ModNone, u.submitForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyCtrlJ, gocui.ModNone, u.submitForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyTab, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyBacktab, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowDown, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowUp, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEsc, gocui.ModNone, u.cancelForm); err != nil {
		return err
	}

	for _, name := range []string{viewProjects, viewTasks} {
		viewName := name
		if err := gui.SetViewClickBinding(&gocui.ViewMouseBinding{ViewName: viewName, Key: gocui.MouseLeft, Handler: func(opts gocui.ViewMouseBindingOpts) error {
			return u.onListClick(gui, viewName, opts)
		}}); err != nil {
			return err
		}
	}
	return nil
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 0, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.FgColor = gocui.ColorDefault
	u.renderHeader(headerView)

	footerY1 := max(maxY-1, 1)
	footerY0 := max(footerY1-3, 1)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	u.renderFooter(footerView)

	bodyTop := 1
	bodyBottom := footerY0 - 1
	if bodyBottom <= bodyTop {
		return nil
	}

	leftX1 := max(maxX/3, 20)
	if leftX1 >= maxX-2 {
		leftX1 = maxX / 2
	}
	splitY := bodyTop + (bodyBottom-bodyTop)/2

	projectsView, err := gui.SetView(viewProjects, 0, bodyTop, leftX1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	projectsView.Title = "Projects [2]"
	applyViewStyle(projectsView, u.focus == viewProjects)
	u.renderProjects(projectsView)

	tasksView, err := gui.SetView(viewTasks, leftX1+1, bodyTop, maxX-1, splitY, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	tasksView.Title = "Tasks [6]"
	if project := u.currentProject(); project != nil {
		tasksView.Title = fmt.Sprintf("Tasks of %s [6]", project.Name)
	}
	applyViewStyle(tasksView, u.focus == viewTasks)
	u.renderTasks(tasksView)

	detailsView, err := gui.SetView(viewDetails, leftX1+1, splitY+1, maxX-1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		detailsView.Wrap = true
	}
	detailsView.Title = "Details"
	if u.showOverview {
		detailsView.Title = "All Projects [0]"
	}
	applyViewStyle(detailsView, false)
	u.renderDetails(detailsView)

	if u.form != nil {
		if err := u.showForm(gui); err != nil {
			return err
		}
		gui.Cursor = true
		return nil
	}

	gui.Cursor = false
	if current := gui.CurrentView(); current == nil || current.Name() != u.focus {
		_, _ = gui.SetCurrentView(u.focus)
	}
	return nil
}

func (u *UI) load() error {
	ctx := context.Background()

	projects, err := u.projects.ListProjects(ctx)
	if err != nil {
		return err
	}
	u.projectList = projects
	u.selectedProject = clampIndex(u.selectedProject, len(projects))

	u.taskList = nil
	if project := u.currentProject(); project != nil {
		tasks, err := u.tasks.ListTasks(ctx, project.ID)
		if err != nil {
			return err
		}
		u.taskList = tasks
	}
	u.selectedTask = clampIndex(u.selectedTask, len(u.taskList))

	u.overview = nil
	if u.showOverview {
		overview, err := u.projects.ListProjectsWithTasks(ctx)
		if err != nil {
			return err
		}
		u.overview = overview
	}
	return nil
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	fmt.Fprintf(view, "Task Tracker | %d project(s) | focus: %s", len(u.projectList), u.focus)
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	view.SetOrigin(0, 0)
	fmt.Fprintln(view, menuText())
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderProjects(view *gocui.View) {
	view.Clear()
	if len(u.projectList) == 0 {
		fmt.Fprint(view, "No projects. Press 1 to create one.")
		return
	}
	for i, project := range u.projectList {
		fmt.Fprintf(view, "%s %s\n", selectionMarker(i == u.selectedProject, u.focus == viewProjects), formatProjectSummary(project))
	}
	if u.focus == viewProjects {
		view.SetCursor(0, u.selectedProject)
	}
}

func (u *UI) renderTasks(view *gocui.View) {
	view.Clear()
	if u.currentProject() == nil {
		return
	}
	if len(u.taskList) == 0 {
		fmt.Fprint(view, "No tasks. Press 5 to create one.")
		return
	}
	for i, task := range u.taskList {
		fmt.Fprintf(view, "%s %s\n", selectionMarker(i == u.selectedTask, u.focus == viewTasks), formatTaskSummary(task))
	}
	if u.focus == viewTasks {
		view.SetCursor(0, u.selectedTask)
	}
}

func (u *UI) renderDetails(view *gocui.View) {
	view.Clear()
	view.SetOrigin(0, 0)

	var lines []string
	switch {
	case u.showOverview:
		lines = overviewLines(u.overview)
	case u.focus == viewTasks && u.currentTask() != nil:
		lines = taskDetailLines(*u.currentTask(), u.now())
	case u.currentProject() != nil:
		lines = projectDetailLines(*u.currentProject(), len(u.taskList))
	default:
		lines = []string{"Nothing selected"}
	}
	for _, line := range lines {
		fmt.Fprintln(view, line)
	}
}

func selectionMarker(selected, focused bool) string {
	if !selected {
		return " "
	}
	if focused {
		return ">"
	}
	return "*"
}

func (u *UI) currentProject() *model.Project {
	if u.selectedProject < 0 || u.selectedProject >= len(u.projectList) {
		return nil
	}
	return &u.projectList[u.selectedProject]
}

func (u *UI) currentTask() *model.Task {
	if u.selectedTask < 0 || u.selectedTask >= len(u.taskList) {
		return nil
	}
	return &u.taskList[u.selectedTask]
}

func (u *UI) createProject(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.form = projectForm(nil)
	return u.openForm(gui)
}

func (u *UI) listProjects(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.showOverview = false
	return u.setFocus(gui, viewProjects)
}

func (u *UI) editProject(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	project := u.currentProject()
	if project == nil {
		u.status = "Select a project first."
		return nil
	}
	u.form = projectForm(project)
	return u.openForm(gui)
}

func (u *UI) deleteProject(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	project := u.currentProject()
	if project == nil {
		u.status = "Select a project first."
		return nil
	}
	if err := u.projects.DeleteProject(context.Background(), project.ID); err != nil {
		return u.report("delete project", err)
	}
	u.status = fmt.Sprintf("Project %q deleted with its tasks.", project.Name)
	u.selectedTask = 0
	return u.load()
}

func (u *UI) createTask(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	project := u.currentProject()
	if project == nil {
		u.status = "Select a project first."
		return nil
	}
	u.form = taskForm(project.ID, nil, u.statuses)
	return u.openForm(gui)
}

func (u *UI) listTasks(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.currentProject() == nil {
		u.status = "Select a project first."
		return nil
	}
	u.showOverview = false
	return u.setFocus(gui, viewTasks)
}

func (u *UI) editTask(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	task := u.currentTask()
	if task == nil {
		u.status = "Select a task first."
		return nil
	}
	u.form = taskForm(task.ProjectID, task, u.statuses)
	return u.openForm(gui)
}

func (u *UI) changeStatus(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	task := u.currentTask()
	if task == nil {
		u.status = "Select a task first."
		return nil
	}
	u.form = statusForm(*task, u.statuses)
	return u.openForm(gui)
}

func (u *UI) deleteTask(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	task := u.currentTask()
	if task == nil {
		u.status = "Select a task first."
		return nil
	}
	if err := u.tasks.DeleteTask(context.Background(), task.ID); err != nil {
		return u.report("delete task", err)
	}
	u.status = fmt.Sprintf("Task %q deleted.", task.Title)
	return u.load()
}

func (u *UI) toggleOverview(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.showOverview = !u.showOverview
	return u.load()
}

func (u *UI) reload(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.status = ""
	return u.load()
}

// report shows domain errors on the status line. Anything else is logged too.
func (u *UI) report(action string, err error) error {
	u.status = err.Error()
	if !model.IsDomain(err) {
		u.logger.Error(action+" failed", "err", err)
	}
	return nil
}

func (u *UI) switchFocus(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.focus == viewProjects && u.currentProject() != nil {
		return u.setFocus(gui, viewTasks)
	}
	return u.setFocus(gui, viewProjects)
}

func (u *UI) setFocus(gui *gocui.Gui, name string) error {
	u.focus = name
	if gui != nil {
		_, _ = gui.SetCurrentView(name)
	}
	return u.load()
}

func (u *UI) moveDown(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewProjects:
		if u.selectedProject < len(u.projectList)-1 {
			u.selectedProject++
			u.selectedTask = 0
			return u.load()
		}
	case viewTasks:
		if u.selectedTask < len(u.taskList)-1 {
			u.selectedTask++
		}
	}
	return nil
}

func (u *UI) moveUp(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewProjects:
		if u.selectedProject > 0 {
			u.selectedProject--
			u.selectedTask = 0
			return u.load()
		}
	case viewTasks:
		if u.selectedTask > 0 {
			u.selectedTask--
		}
	}
	return nil
}

func (u *UI) onListClick(gui *gocui.Gui, viewName string, opts gocui.ViewMouseBindingOpts) error {
	if u.inputActive() {
		return nil
	}
	view, err := gui.View(viewName)
	if err != nil {
		return nil
	}

	_, y0, _, _ := view.Dimensions()
	_, oy := view.Origin()
	row := max(opts.Y-y0-1+oy, 0)

	switch viewName {
	case viewProjects:
		if row != u.selectedProject {
			u.selectedTask = 0
		}
		u.selectedProject = clampIndex(row, len(u.projectList))
	case viewTasks:
		u.selectedTask = clampIndex(row, len(u.taskList))
	}
	return u.setFocus(gui, viewName)
}

func (u *UI) scrollUp(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if view == nil {
		view = gui.CurrentView()
	}
	if view != nil {
		view.ScrollUp(1)
	}
	return nil
}

func (u *UI) scrollDown(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if view == nil {
		view = gui.CurrentView()
	}
	if view != nil {
		view.ScrollDown(1)
	}
	return nil
}

func (u *UI) openForm(gui *gocui.Gui) error {
	u.status = ""
	if gui == nil {
		return nil
	}
	return u.showForm(gui)
}

func (u *UI) showForm(gui *gocui.Gui) error {
	if u.form == nil {
		return nil
	}

	maxX, maxY := gui.Size()
	width := min(max(60, maxX/2), maxX-2)
	height := len(u.form.fields) + 3
	x0 := max((maxX-width)/2, 0)
	y0 := max((maxY-height)/2, 0)

	view, err := gui.SetView(viewForm, x0, y0, x0+width, y0+height, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
	}
	view.Title = u.form.title()
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.formEditor
	u.renderForm(view)
	_, _ = gui.SetViewOnTop(viewForm)
	_, _ = gui.SetCurrentView(viewForm)
	return nil
}

func (u *UI) submitForm(gui *gocui.Gui, _ *gocui.View) error {
	if u.form == nil {
		return nil
	}

	ctx := context.Background()
	form := u.form
	var (
		message string
		err     error
	)
	switch form.kind {
	case formCreateProject:
		var project model.Project
		project, err = u.projects.CreateProject(ctx, form.value(fieldName), form.value(fieldProjectDescription))
		message = fmt.Sprintf("Project %q created.", project.Name)
	case formEditProject:
		var project model.Project
		project, err = u.projects.EditProject(ctx, form.projectID, form.value(fieldName), form.value(fieldProjectDescription))
		message = fmt.Sprintf("Project %q updated.", project.Name)
	case formCreateTask:
		var task model.Task
		task, err = u.tasks.CreateTask(ctx, form.taskInput())
		message = fmt.Sprintf("Task %q created.", task.Title)
	case formEditTask:
		var task model.Task
		task, err = u.tasks.UpdateTask(ctx, form.taskID, form.taskUpdate())
		message = fmt.Sprintf("Task %q updated.", task.Title)
	case formChangeStatus:
		var task model.Task
		task, err = u.tasks.ChangeStatus(ctx, form.taskID, form.value(0))
		message = fmt.Sprintf("Task %q is now %s.", task.Title, task.Status)
	}
	if err != nil {
		// The form stays open so the input can be corrected.
		return u.report("save", err)
	}

	u.closeForm(gui)
	u.status = message
	return u.load()
}

func (u *UI) cancelForm(gui *gocui.Gui, _ *gocui.View) error {
	u.closeForm(gui)
	u.status = ""
	return nil
}

func (u *UI) closeForm(gui *gocui.Gui) {
	u.form = nil
	if gui == nil {
		return
	}
	_ = gui.DeleteView(viewForm)
	_, _ = gui.SetCurrentView(u.focus)
}

func (u *UI) nextFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index < len(u.form.fields)-1 {
		u.form.index++
	}
	u.renderForm(view)
	return nil
}

func (u *UI) prevFormField(_ *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index > 0 {
		u.form.index--
	}
	u.renderForm(view)
	return nil
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	for index, field := range u.form.fields {
		prefix := "  "
		if index == u.form.index {
			prefix = "> "
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, field.Value)
	}
	fmt.Fprint(view, "\n  enter save | esc cancel | tab next field")

	current := u.form.fields[u.form.index]
	cursorX := len([]rune(current.Label)) + len([]rune(current.Value)) + 4
	view.SetCursor(cursorX, u.form.index)
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil || view == nil {
		return false
	}
	field := &ui.form.fields[ui.form.index]

	if len(field.Choices) > 0 {
		switch key {
		case gocui.KeyArrowRight, gocui.KeySpace:
			field.Value = cycleChoice(field.Choices, field.Value, 1)
		case gocui.KeyArrowLeft:
			field.Value = cycleChoice(field.Choices, field.Value, -1)
		}
		ui.renderForm(view)
		return true
	}

	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		runes := []rune(field.Value)
		if len(runes) > 0 {
			field.Value = string(runes[:len(runes)-1])
		}
	case gocui.KeySpace:
		field.Value += " "
	case gocui.KeyCtrlU:
		field.Value = ""
	}

	if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
		field.Value += string(ch)
	}

	ui.renderForm(view)
	return true
}

func (u *UI) inputActive() bool {
	return u.form != nil
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}

func applyViewStyle(view *gocui.View, focused bool) {
	view.Frame = true
	view.Highlight = focused
	view.HighlightInactive = false
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	if focused {
		view.FrameColor = gocui.ColorCyan
		view.TitleColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
		view.TitleColor = gocui.ColorDefault
	}
}

func clampIndex(index, length int) int {
	if length == 0 || index < 0 {
		return 0
	}
	if index >= length {
		return length - 1
	}
	return index
}
