// Package options provides the grouping options page
package options

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tabgroups/tabgroups/internal/domain"
	"github.com/tabgroups/tabgroups/internal/logging"
	"github.com/tabgroups/tabgroups/internal/platform"
	"github.com/tabgroups/tabgroups/internal/tui"
)

// Control identifies a focusable control on the page
type Control int

const (
	ControlAutomatic Control = iota
	ControlManual
	ControlTitle
	ControlColor
	controlCount
)

type messageType int

const (
	messageTypeNone messageType = iota
	messageTypeSuccess
	messageTypeError
	messageTypeInfo
)

// UpdateMsg delivers a partial update received from the update channel
type UpdateMsg struct {
	Update domain.Update
}

// WriteResultMsg reports the outcome of a single store write
type WriteResultMsg struct {
	Key string
	Err error
}

// channelClosedMsg is sent once the update channel has been closed
type channelClosedMsg struct{}

// reconcileMsg carries the values re-read after a failed write
type reconcileMsg struct {
	Key   string
	Prefs domain.StoredPreferences
	Err   error
}

type pageStyles struct {
	titleStyle       lipgloss.Style
	headingStyle     lipgloss.Style
	labelStyle       lipgloss.Style
	activeLabelStyle lipgloss.Style
	descriptionStyle lipgloss.Style
	kbdStyle         lipgloss.Style
	asideStyle       lipgloss.Style
	errorStyle       lipgloss.Style
	successStyle     lipgloss.Style
	infoStyle        lipgloss.Style
}

func newPageStyles(theme domain.Theme) pageStyles {
	return pageStyles{
		titleStyle:       tui.LipglossStyle(theme, "title"),
		headingStyle:     tui.LipglossStyle(theme, "heading"),
		labelStyle:       tui.LipglossStyle(theme, "label"),
		activeLabelStyle: tui.LipglossStyle(theme, "label_active"),
		descriptionStyle: tui.LipglossStyle(theme, "description"),
		kbdStyle:         tui.LipglossStyle(theme, "kbd"),
		asideStyle:       tui.LipglossStyle(theme, "aside"),
		errorStyle:       tui.LipglossStyle(theme, "error"),
		successStyle:     tui.LipglossStyle(theme, "success"),
		infoStyle:        tui.LipglossStyle(theme, "muted"),
	}
}

// Page is the options page model. The view always reflects the local
// preferences; user actions change them at once and write through the
// store, while updates from the channel are merged in as they arrive.
type Page struct {
	ctx      context.Context
	store    domain.PreferenceStore
	updates  <-chan domain.Update
	logger   domain.Logger
	theme    domain.Theme
	platform string
	superKey string

	prefs  domain.Preferences
	focus  Control
	writes *writeLog

	width       int
	height      int
	styles      pageStyles
	keyMap      pageKeyMap
	help        help.Model
	showHelp    bool
	message     string
	messageType messageType
	quitting    bool
}

// Option configures a Page
type Option func(*Page)

// WithContext sets the context used for store writes
func WithContext(ctx context.Context) Option {
	return func(p *Page) {
		p.ctx = ctx
	}
}

// WithLogger sets the page logger
func WithLogger(logger domain.Logger) Option {
	return func(p *Page) {
		p.logger = logger
	}
}

// WithTheme sets the colour theme
func WithTheme(theme domain.Theme) Option {
	return func(p *Page) {
		p.theme = theme
	}
}

// WithPlatform sets the platform identifier, e.g. "MacIntel"
func WithPlatform(name string) Option {
	return func(p *Page) {
		p.platform = name
	}
}

// WithHelp controls whether the key help line is shown
func WithHelp(show bool) Option {
	return func(p *Page) {
		p.showHelp = show
	}
}

// Load reads the current preferences one field at a time: mode, color, title
func Load(ctx context.Context, store domain.PreferenceStore) (domain.StoredPreferences, error) {
	var prefs domain.StoredPreferences
	var err error

	if prefs.Mode, err = store.Mode().Get(ctx); err != nil {
		return prefs, fmt.Errorf("reading %s: %w", domain.KeyMode, err)
	}
	if prefs.Color, err = store.Color().Get(ctx); err != nil {
		return prefs, fmt.Errorf("reading %s: %w", domain.KeyColor, err)
	}
	if prefs.Title, err = store.Title().Get(ctx); err != nil {
		return prefs, fmt.Errorf("reading %s: %w", domain.KeyTitle, err)
	}
	return prefs, nil
}

// New creates the page over store, seeded with initial. updates may be nil
// when no update channel is available.
func New(store domain.PreferenceStore, updates <-chan domain.Update, initial domain.StoredPreferences, opts ...Option) *Page {
	p := &Page{
		ctx:      context.Background(),
		store:    store,
		updates:  updates,
		writes:   newWriteLog(),
		keyMap:   defaultKeyMap(),
		help:     help.New(),
		showHelp: true,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = logging.Discard()
	}
	if p.theme == nil {
		p.theme = tui.NewDefaultTheme()
	}
	p.platform = platform.Resolve(p.platform)
	p.superKey = platform.SuperKey(p.platform)
	p.styles = newPageStyles(p.theme)

	prefs, err := initial.Preferences()
	if err != nil {
		p.logger.Warn("stored mode not recognised", "mode", initial.Mode, "err", err)
		p.setMessage(fmt.Sprintf("Unknown grouping mode %q", initial.Mode), messageTypeError)
	}
	p.prefs = prefs
	return p
}

// Preferences returns the preferences currently shown
func (p *Page) Preferences() domain.Preferences {
	return p.prefs
}

// Focused returns the focused control
func (p *Page) Focused() Control {
	return p.focus
}

// Platform returns the resolved platform identifier
func (p *Page) Platform() string {
	return p.platform
}

// SetAuto selects automatic grouping
func (p *Page) SetAuto() tea.Cmd {
	return p.setMode(domain.ModeAutomatic)
}

// SetMan selects manual grouping
func (p *Page) SetMan() tea.Cmd {
	return p.setMode(domain.ModeManual)
}

// ToggleTitle flips the title preference
func (p *Page) ToggleTitle() tea.Cmd {
	next := !p.prefs.Title
	p.prefs.Title = next
	return p.write(domain.KeyTitle, func(ctx context.Context) error {
		return p.store.Title().Set(ctx, next)
	})
}

// ToggleColor flips the color preference
func (p *Page) ToggleColor() tea.Cmd {
	next := !p.prefs.Color
	p.prefs.Color = next
	return p.write(domain.KeyColor, func(ctx context.Context) error {
		return p.store.Color().Set(ctx, next)
	})
}

func (p *Page) setMode(mode domain.Mode) tea.Cmd {
	p.prefs.Mode = mode
	stored := mode.Key()
	return p.write(domain.KeyMode, func(ctx context.Context) error {
		return p.store.Mode().Set(ctx, stored)
	})
}

func (p *Page) write(key string, set func(context.Context) error) tea.Cmd {
	ctx := p.ctx
	writes := p.writes
	gen := writes.issue(key)
	return func() tea.Msg {
		return WriteResultMsg{Key: key, Err: writes.run(ctx, key, gen, set)}
	}
}

// writeLog runs store writes one at a time and drops a write when a later
// write of the same key has already been stored. Commands run on their own
// goroutines, so without it a stale value could land last.
type writeLog struct {
	mu      sync.Mutex
	issued  map[string]uint64
	written map[string]uint64
}

func newWriteLog() *writeLog {
	return &writeLog{
		issued:  make(map[string]uint64),
		written: make(map[string]uint64),
	}
}

// issue returns the generation of the next write of key
func (w *writeLog) issue(key string) uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.issued[key]++
	return w.issued[key]
}

func (w *writeLog) run(ctx context.Context, key string, gen uint64, set func(context.Context) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if gen < w.written[key] {
		return nil
	}
	if err := set(ctx); err != nil {
		return err
	}
	w.written[key] = gen
	return nil
}

// ApplyUpdate merges the keys present in update into the shown preferences
func (p *Page) ApplyUpdate(update domain.Update) {
	next, err := p.prefs.Apply(update)
	if err != nil {
		p.logger.Warn("ignoring unknown mode in update", "mode", *update.Mode, "err", err)
	}
	p.prefs = next
}

// Init implements tea.Model
func (p *Page) Init() tea.Cmd {
	return waitForUpdate(p.updates)
}

func waitForUpdate(updates <-chan domain.Update) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return channelClosedMsg{}
		}
		return UpdateMsg{Update: update}
	}
}

func (p *Page) reconcile(key string) tea.Cmd {
	ctx := p.ctx
	store := p.store
	return func() tea.Msg {
		prefs, err := Load(ctx, store)
		return reconcileMsg{Key: key, Prefs: prefs, Err: err}
	}
}

// Update implements tea.Model
func (p *Page) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		p.help.Width = msg.Width
		return p, nil

	case UpdateMsg:
		p.ApplyUpdate(msg.Update)
		return p, waitForUpdate(p.updates)

	case channelClosedMsg:
		p.logger.Debug("update channel closed")
		p.updates = nil
		p.setMessage("Live updates stopped", messageTypeInfo)
		return p, nil

	case WriteResultMsg:
		if msg.Err != nil {
			p.logger.Error("failed to save preference", "key", msg.Key, "err", msg.Err)
			p.setMessage(fmt.Sprintf("Could not save %s: %v", msg.Key, msg.Err), messageTypeError)
			return p, p.reconcile(msg.Key)
		}
		p.logger.Debug("saved preference", "key", msg.Key)
		p.setMessage("Saved", messageTypeSuccess)
		return p, nil

	case reconcileMsg:
		if msg.Err != nil {
			p.logger.Error("failed to re-read preferences", "err", msg.Err)
			return p, nil
		}
		p.reconcileFrom(msg.Key, msg.Prefs)
		return p, nil

	case tea.KeyMsg:
		return p, p.handleKey(msg)
	}

	return p, nil
}

// reconcileFrom restores the field behind a failed write from the store
func (p *Page) reconcileFrom(field string, stored domain.StoredPreferences) {
	switch field {
	case domain.KeyMode:
		mode, err := domain.ParseMode(stored.Mode)
		if err != nil {
			p.logger.Warn("stored mode not recognised", "mode", stored.Mode, "err", err)
			return
		}
		p.prefs.Mode = mode
	case domain.KeyColor:
		p.prefs.Color = stored.Color
	case domain.KeyTitle:
		p.prefs.Title = stored.Title
	}
}

func (p *Page) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, p.keyMap.Quit):
		p.quitting = true
		return tea.Quit
	case key.Matches(msg, p.keyMap.Up):
		p.focus = (p.focus + controlCount - 1) % controlCount
	case key.Matches(msg, p.keyMap.Down):
		p.focus = (p.focus + 1) % controlCount
	case key.Matches(msg, p.keyMap.Activate):
		return p.activate(p.focus)
	case key.Matches(msg, p.keyMap.Auto):
		p.focus = ControlAutomatic
		return p.SetAuto()
	case key.Matches(msg, p.keyMap.Manual):
		p.focus = ControlManual
		return p.SetMan()
	case key.Matches(msg, p.keyMap.Title):
		p.focus = ControlTitle
		return p.ToggleTitle()
	case key.Matches(msg, p.keyMap.Color):
		p.focus = ControlColor
		return p.ToggleColor()
	case key.Matches(msg, p.keyMap.Help):
		p.help.ShowAll = !p.help.ShowAll
	}
	return nil
}

func (p *Page) activate(c Control) tea.Cmd {
	switch c {
	case ControlAutomatic:
		return p.SetAuto()
	case ControlManual:
		return p.SetMan()
	case ControlTitle:
		return p.ToggleTitle()
	case ControlColor:
		return p.ToggleColor()
	}
	return nil
}

// View implements tea.Model
func (p *Page) View() string {
	if p.quitting {
		return ""
	}

	var content strings.Builder

	content.WriteString(p.styles.titleStyle.Render("Tab Groups Options") + "\n\n")

	content.WriteString(p.styles.headingStyle.Render("Tabs are put in groups") + "\n")
	content.WriteString(p.renderRow(ControlAutomatic, radio(p.prefs.Mode == domain.ModeAutomatic), "Automatically.",
		"Recently opened tabs are automatically grouped by domain.") + "\n")
	content.WriteString(p.renderRow(ControlManual, radio(p.prefs.Mode == domain.ModeManual), "Manually.",
		"Tabs are grouped by domain when the icon in the tool bar is clicked or "+p.renderShortcut()+" is pressed.") + "\n\n")

	content.WriteString(p.styles.headingStyle.Render("New groups get") + "\n")
	content.WriteString(p.renderRow(ControlTitle, checkbox(p.prefs.Title), "A title.",
		"Set to the domain of sites in that group.") + "\n")
	content.WriteString(p.renderRow(ControlColor, checkbox(p.prefs.Color), "An unique color.",
		"Based on the domain.") + "\n\n")

	content.WriteString(p.renderAside() + "\n")

	if p.message != "" {
		var messageStyle lipgloss.Style
		switch p.messageType {
		case messageTypeSuccess:
			messageStyle = p.styles.successStyle
		case messageTypeError:
			messageStyle = p.styles.errorStyle
		default:
			messageStyle = p.styles.infoStyle
		}
		content.WriteString("\n" + messageStyle.Render(p.message) + "\n")
	}

	if p.showHelp {
		content.WriteString("\n" + p.help.View(p.keyMap))
	}

	return content.String()
}

func radio(on bool) string {
	if on {
		return "(•)"
	}
	return "( )"
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (p *Page) renderRow(c Control, marker, label, description string) string {
	cursor := "  "
	if p.focus == c {
		cursor = "> "
	}

	active := strings.HasPrefix(marker, "(•") || strings.HasPrefix(marker, "[x")
	labelStyle := p.styles.labelStyle
	if active {
		labelStyle = p.styles.activeLabelStyle
	}

	desc := p.styles.descriptionStyle
	if p.width > 0 {
		indent := lipgloss.Width(cursor + marker + " " + label + " ")
		if w := p.width - indent; w > 10 {
			desc = desc.Width(w)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cursor+labelStyle.Render(marker+" "+label)+" ", desc.Render(description))
}

func (p *Page) renderShortcut() string {
	return p.styles.kbdStyle.Render(p.superKey + "+Shift+L")
}

func (p *Page) renderAside() string {
	body := p.styles.headingStyle.Render("How does all this work?") + "\n" +
		p.styles.descriptionStyle.Render("The extension will check the domain of the site in each tab, "+
			"putting sites with the same domain in the same tab group.") + "\n\n" +
		p.styles.descriptionStyle.Render("Only un-grouped tabs, not already in a group, will be grouped. "+
			"Pinned tabs are never grouped.")

	style := p.styles.asideStyle
	if p.width > 4 {
		style = style.Width(p.width - 4)
	}
	return style.Render(body)
}

func (p *Page) setMessage(message string, msgType messageType) {
	p.message = message
	p.messageType = msgType
}

var _ tea.Model = (*Page)(nil)
