package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/quill/internal/domain"
	"github.com/mmcdole/quill/internal/editor"
	"github.com/mmcdole/quill/internal/engagement"
	"github.com/mmcdole/quill/internal/feed"
	"github.com/mmcdole/quill/internal/query"
	"github.com/mmcdole/quill/internal/service"
	"github.com/mmcdole/quill/internal/tui/components"
	"github.com/mmcdole/quill/internal/tui/styles"
)

// ApplicationState represents the current screen
type ApplicationState int

const (
	StateFeed ApplicationState = iota
	StateDetail
	StateCompose
	StateProfile
	StateHelp
)

type promptPurpose int

const (
	promptNone promptPurpose = iota
	promptSearch
	promptOpen
	promptComment
	promptImage
	promptFormat
)

type confirmPurpose int

const (
	confirmNone confirmPurpose = iota
	confirmDelete
	confirmLogout
	confirmDiscard
)

// Image load targets
const (
	imageForPost   = "post"
	imageForAvatar = "avatar"
)

const (
	statusDelay      = 3 * time.Second
	errorStatusDelay = 6 * time.Second
	suggestionCount  = 5
)

// PageCache is the paginated cache the feed tabs read from
type PageCache interface {
	feed.PageCache
	KeySource
	Wait(ctx context.Context, key query.Key) (query.Entry[domain.PageResult], error)
}

// Deps are the collaborators the UI drives
type Deps struct {
	Cache    PageCache
	Auth     AuthSource
	Accounts *service.AccountService
	Posts    *service.PostService
	Profiles *service.ProfileService
	History  *service.SearchHistory
	Likes    domain.LikeRepository
	Comments domain.CommentRepository

	// DefaultFeed is the resource of the tab shown first
	DefaultFeed string
	Logger      *slog.Logger
}

// feedTab pairs a list controller with the list component showing it
type feedTab struct {
	resource string
	ctrl     *feed.Controller
	list     *components.ItemList
	started  bool
}

// pending reports whether the tab's page has a fetch in flight
func (t *feedTab) pending() bool {
	return t.started && (t.ctrl.State() == feed.StateLoading || t.ctrl.IsRefreshing())
}

// detailView is the open post with its like and comment controllers
type detailView struct {
	post     domain.Post
	like     *engagement.LikeToggle
	thread   *engagement.CommentThread
	other    *domain.Post
	showAll  bool
	viewport viewport.Model
}

// composeView is the authoring screen. postID is 0 when writing a new post.
type composeView struct {
	postID int64
	title  textinput.Model
	tags   textinput.Model
	body   editor.Model
	image  *domain.Upload
	focus  int
	err    error
	busy   bool
}

// profileView holds the stats pane of the profile screen
type profileView struct {
	stats    *components.ItemList
	statsFor int64
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State     ApplicationState
	prevState ApplicationState
	Ready     bool

	deps     Deps
	logger   *slog.Logger
	observer *Observer

	// Feeds
	tabs      []*feedTab
	activeTab int

	// Screens
	detail  *detailView
	compose *composeView
	profile profileView

	// Modals
	Prompt       components.InputModal
	prompt       promptPurpose
	LoginForm    components.Form
	RegisterForm components.Form
	ProfileForm  components.Form
	PasswordForm components.Form
	Confirm      components.Confirm
	confirm      confirmPurpose
	deleteID     int64

	help help.Model

	// Account
	LoggedIn bool
	Me       *domain.Profile

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg    string
	StatusIsErr  bool
	SpinnerFrame int
}

// NewModel creates a new application model
func NewModel(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	m := Model{
		State:    StateFeed,
		deps:     deps,
		logger:   deps.Logger,
		observer: NewObserver(deps.Cache, deps.Auth),
		Prompt:   components.NewInputModal(),
		LoginForm: components.NewForm("Log in",
			components.FieldSpec{Key: "email", Label: "Email", Placeholder: "you@example.com"},
			components.FieldSpec{Key: "password", Label: "Password", Password: true},
		),
		RegisterForm: components.NewForm("Create an account",
			components.FieldSpec{Key: "name", Label: "Name", CharLimit: 80},
			components.FieldSpec{Key: "email", Label: "Email", Placeholder: "you@example.com"},
			components.FieldSpec{Key: "password", Label: "Password", Password: true},
			components.FieldSpec{Key: "confirmPassword", Label: "Confirm password", Password: true},
		),
		ProfileForm: components.NewForm("Edit profile",
			components.FieldSpec{Key: "name", Label: "Name", CharLimit: 80},
			components.FieldSpec{Key: "headline", Label: "Headline", CharLimit: 160},
			components.FieldSpec{Key: "avatar", Label: "Avatar image", Placeholder: "path to PNG/JPG (optional)"},
		),
		PasswordForm: components.NewForm("Change password",
			components.FieldSpec{Key: "currentPassword", Label: "Current password", Password: true},
			components.FieldSpec{Key: "newPassword", Label: "New password", Password: true},
			components.FieldSpec{Key: "confirmPassword", Label: "Confirm new password", Password: true},
		),
		help:    newHelp(),
		profile: profileView{stats: components.NewItemList("Likes & comments")},
	}
	if deps.Auth != nil {
		m.LoggedIn = deps.Auth.IsLoggedIn()
	}

	for _, resource := range []string{
		feed.ResourceRecommended,
		feed.ResourceMostLiked,
		feed.ResourceSearch,
		feed.ResourceMyPosts,
	} {
		m.tabs = append(m.tabs, m.newTab(resource))
		if resource == deps.DefaultFeed {
			m.activeTab = len(m.tabs) - 1
		}
	}
	m.profile.stats.SetMessage("Select a post and press i", false)
	return m
}

func newHelp() help.Model {
	h := help.New()
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpDescStyle
	h.Styles.FullKey = styles.HelpKeyStyle
	h.Styles.FullDesc = styles.HelpDescStyle
	return h
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	m.activate(m.activeTab)

	cmds := []tea.Cmd{
		m.observer.ListenCmd(),
		TickCmd(100 * time.Millisecond),
		m.awaitTabs(),
	}
	if m.LoggedIn {
		cmds = append(cmds, LoadProfileCmd(m.deps.Accounts))
	}
	return tea.Batch(cmds...)
}

// Close releases the cache and session subscriptions
func (m Model) Close() {
	m.observer.Close()
	for _, t := range m.tabs {
		t.ctrl.Close()
	}
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		for _, t := range m.tabs {
			// Catches up on settle notifications the observer dropped
			if t.pending() && t.ctrl.Sync(t.ctrl.Key()) {
				m.syncTab(t)
			}
			t.list.SetSpinnerFrame(m.SpinnerFrame)
		}
		m.profile.stats.SetSpinnerFrame(m.SpinnerFrame)
		return m, TickCmd(100 * time.Millisecond)

	case CacheUpdatedMsg:
		for _, t := range m.tabs {
			if t.started && t.ctrl.Sync(msg.Key) {
				m.syncTab(t)
			}
		}
		return m, m.observer.WaitKeyCmd()

	case PageSettledMsg:
		for _, t := range m.tabs {
			if t.started && t.ctrl.Sync(msg.Key) {
				m.syncTab(t)
			}
		}
		return m, nil

	case AuthChangedMsg:
		cmd := m.handleAuthChanged(msg.LoggedIn)
		return m, tea.Batch(cmd, m.observer.WaitAuthCmd())

	case ProfileLoadedMsg:
		m.Me = msg.Profile
		return m, nil

	case PostLoadedMsg:
		if msg.Post == nil {
			return m, nil
		}
		if m.State == StateDetail && m.detail != nil && m.detail.post.ID == msg.Post.ID {
			m.replaceDetailPost(*msg.Post)
			return m, nil
		}
		return m, m.openPost(*msg.Post)

	case RelatedLoadedMsg:
		if m.detail != nil && m.detail.post.ID == msg.PostID {
			m.detail.other = msg.Other
			m.refreshDetail()
		}
		return m, nil

	case CommentsLoadedMsg:
		if m.detail == nil || m.detail.post.ID != msg.PostID {
			return m, nil
		}
		m.refreshDetail()
		if msg.Err != nil {
			return m, m.setStatus("Comments: "+domain.UserMessage(msg.Err), true)
		}
		return m, nil

	case LikeSentMsg:
		if m.detail == nil || m.detail.post.ID != msg.PostID {
			return m, nil
		}
		m.detail.like.Settle(msg.Pending, msg.Result, msg.Err)
		m.refreshDetail()
		if msg.Err != nil {
			return m, m.setStatus("Like failed: "+domain.UserMessage(msg.Err), true)
		}
		return m, nil

	case CommentSentMsg:
		if m.detail == nil || m.detail.post.ID != msg.PostID {
			return m, nil
		}
		reload := m.detail.thread.Settle(msg.Pending, msg.Created, msg.Err)
		m.refreshDetail()
		if msg.Err != nil {
			return m, m.setStatus("Comment failed: "+domain.UserMessage(msg.Err), true)
		}
		cmds := []tea.Cmd{m.setStatus("Comment posted", false)}
		if reload {
			cmds = append(cmds, LoadCommentsCmd(m.detail.thread))
		}
		return m, tea.Batch(cmds...)

	case LoginResultMsg:
		if msg.Err != nil {
			m.LoginForm.SetError(msg.Err)
			return m, nil
		}
		m.LoginForm.Hide()
		return m, m.setStatus("Logged in", false)

	case RegisterResultMsg:
		if msg.Err != nil {
			m.RegisterForm.SetError(msg.Err)
			return m, nil
		}
		m.RegisterForm.Hide()
		m.LoginForm.Show()
		m.LoginForm.SetValue("email", msg.Email)
		return m, m.setStatus("Account created. Log in to continue.", false)

	case LoggedOutMsg:
		if msg.Err != nil {
			return m, m.setStatus("Logged out, but the credential could not be removed: "+msg.Err.Error(), true)
		}
		return m, m.setStatus("Logged out", false)

	case ImageLoadedMsg:
		return m.handleImageLoaded(msg)

	case PostSavedMsg:
		return m.handlePostSaved(msg)

	case PostDeletedMsg:
		if msg.Err != nil {
			return m, m.setStatus("Delete failed: "+domain.UserMessage(msg.Err), true)
		}
		m.refreshStartedTabs()
		if m.detail != nil && m.detail.post.ID == msg.PostID {
			m.detail = nil
			if m.State == StateDetail {
				m.State = m.prevState
			}
		}
		if m.profile.statsFor == msg.PostID {
			m.clearStats()
		}
		return m, tea.Batch(m.setStatus("Post deleted", false), m.awaitTabs())

	case ProfileSavedMsg:
		if msg.Err != nil {
			m.ProfileForm.SetError(msg.Err)
			return m, nil
		}
		m.ProfileForm.Hide()
		if msg.Profile != nil {
			m.Me = msg.Profile
		}
		return m, m.setStatus("Profile updated", false)

	case PasswordChangedMsg:
		if msg.Err != nil {
			m.PasswordForm.SetError(msg.Err)
			return m, nil
		}
		m.PasswordForm.Hide()
		text := msg.Message
		if text == "" {
			text = "Password changed"
		}
		return m, m.setStatus(text, false)

	case StatsLoadedMsg:
		if msg.PostID != m.profile.statsFor {
			return m, nil
		}
		m.profile.stats.SetLoading(false)
		if msg.Err != nil {
			m.profile.stats.SetItems(nil)
			m.profile.stats.SetMessage(domain.UserMessage(msg.Err), true)
			return m, nil
		}
		items := append(components.AuthorItems(msg.Stats.Likes), components.CommentItems(msg.Stats.Comments)...)
		m.profile.stats.SetTitle(fmt.Sprintf("♥ %d likes · ✎ %d comments", len(msg.Stats.Likes), len(msg.Stats.Comments)))
		m.profile.stats.ResetCursor()
		m.profile.stats.SetItems(items)
		if len(items) == 0 {
			m.profile.stats.SetMessage("No likes or comments yet", false)
		}
		return m, nil

	case ErrMsg:
		m.logger.Warn("command failed", "context", msg.Context, "error", msg.Err)
		return m, m.setStatus(msg.Context+": "+domain.UserMessage(msg.Err), true)

	case StatusMsg:
		return m, m.setStatus(msg.Text, msg.IsErr)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	// Non-key messages (cursor blink and the like) go to whatever has focus
	return m.routeToFocused(msg)
}

// routeToFocused passes a message to the focused input
func (m Model) routeToFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.LoginForm.IsVisible():
		m.LoginForm, cmd, _ = m.LoginForm.Update(msg)
	case m.RegisterForm.IsVisible():
		m.RegisterForm, cmd, _ = m.RegisterForm.Update(msg)
	case m.ProfileForm.IsVisible():
		m.ProfileForm, cmd, _ = m.ProfileForm.Update(msg)
	case m.PasswordForm.IsVisible():
		m.PasswordForm, cmd, _ = m.PasswordForm.Update(msg)
	case m.Prompt.IsVisible():
		m.Prompt, cmd, _ = m.Prompt.Update(msg)
	case m.State == StateCompose && m.compose != nil:
		cmd = m.compose.update(msg)
	}
	return m, cmd
}

// setStatus shows a footer message and schedules its removal
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	if isErr {
		return ClearStatusCmd(errorStatusDelay)
	}
	return ClearStatusCmd(statusDelay)
}

// Feeds

func (m *Model) newTab(resource string) *feedTab {
	var ctrl *feed.Controller
	if resource == feed.ResourceSearch {
		ctrl = feed.NewSearch(m.deps.Cache, m.logger)
	} else {
		ctrl = feed.New(m.deps.Cache, resource, m.logger)
	}
	return &feedTab{
		resource: resource,
		ctrl:     ctrl,
		list:     components.NewItemList(feed.Title(resource)),
	}
}

func (m *Model) currentTab() *feedTab {
	return m.tabs[m.activeTab]
}

func (m *Model) tabFor(resource string) *feedTab {
	for _, t := range m.tabs {
		if t.resource == resource {
			return t
		}
	}
	return nil
}

// activate shows tab i, loading it on first use
func (m *Model) activate(i int) {
	m.activeTab = (i + len(m.tabs)) % len(m.tabs)
	for j, t := range m.tabs {
		t.list.SetFocused(j == m.activeTab)
	}
	m.ensureStarted(m.currentTab())
}

func (m *Model) ensureStarted(t *feedTab) {
	if !t.started {
		if t.resource == feed.ResourceMyPosts && !m.LoggedIn {
			m.syncTab(t)
			return
		}
		t.ctrl.Start()
		t.started = true
	}
	m.syncTab(t)
}

// syncTab copies the controller's state into its list
func (m *Model) syncTab(t *feedTab) {
	c := t.ctrl
	list := t.list

	title := feed.Title(t.resource)
	if term := c.Term(); term != "" {
		title += fmt.Sprintf(" %q", term)
	}
	if total := c.Total(); c.State() == feed.StateLoaded && total > 0 {
		title += fmt.Sprintf(" · %d posts", total)
	}
	if c.IsRefreshing() {
		title += " " + RenderSpinner(m.SpinnerFrame)
	}
	list.SetTitle(title)
	list.SetPages(c.Page(), c.LastPage())

	if t.resource == feed.ResourceMyPosts && !m.LoggedIn {
		list.SetItems(nil)
		list.SetMessage("Log in (C-l) to see your posts", false)
		return
	}

	switch c.State() {
	case feed.StateNoQuery:
		list.SetItems(nil)
		list.SetMessage("Press s to search posts", false)
	case feed.StateLoading:
		list.SetItems(nil)
		list.SetLoading(true)
	case feed.StateFailed:
		list.SetItems(nil)
		list.SetMessage(domain.UserMessage(c.Err())+" (r to retry)", true)
	case feed.StateLoaded:
		list.SetItems(components.PostItems(c.Items()))
		if c.IsEmpty() {
			list.SetMessage("No posts found", false)
		}
		if err := c.Err(); err != nil {
			list.SetMessage("Refresh failed: "+domain.UserMessage(err), true)
		}
	default:
		list.SetItems(nil)
	}
}

// changePage moves the tab to another page
func (m *Model) changePage(t *feedTab, next bool) {
	var moved bool
	if next {
		moved = t.ctrl.Next()
	} else {
		moved = t.ctrl.Prev()
	}
	if moved {
		t.list.ResetCursor()
	}
	m.syncTab(t)
}

// awaitTabs waits for the visible page of every tab that is still fetching
func (m *Model) awaitTabs() tea.Cmd {
	if m.deps.Cache == nil {
		return nil
	}
	var cmds []tea.Cmd
	for _, t := range m.tabs {
		if t.pending() {
			cmds = append(cmds, WaitPageCmd(m.deps.Cache, t.ctrl.Key()))
		}
	}
	return tea.Batch(cmds...)
}

// refreshStartedTabs refetches the visible page of every loaded tab
func (m *Model) refreshStartedTabs() {
	for _, t := range m.tabs {
		if t.started {
			t.ctrl.Refresh()
			m.syncTab(t)
		}
	}
}

// resetFeeds replaces every controller after the cache was cleared. The
// search term survives.
func (m *Model) resetFeeds() {
	for i, t := range m.tabs {
		term := t.ctrl.Term()
		t.ctrl.Close()

		fresh := m.newTab(t.resource)
		fresh.list = t.list
		fresh.list.ResetCursor()
		m.tabs[i] = fresh
		if term != "" {
			fresh.ctrl.SetTerm(term)
			fresh.started = true
		}
	}
	m.activate(m.activeTab)
	if m.State == StateProfile {
		m.ensureStarted(m.tabFor(feed.ResourceMyPosts))
	}
}

func (m *Model) handleAuthChanged(loggedIn bool) tea.Cmd {
	m.LoggedIn = loggedIn
	m.resetFeeds()
	if loggedIn {
		return LoadProfileCmd(m.deps.Accounts)
	}

	m.Me = nil
	m.clearStats()
	m.ProfileForm.Hide()
	m.PasswordForm.Hide()
	if m.State == StateProfile || m.State == StateCompose {
		m.compose = nil
		m.State = StateFeed
	}
	return nil
}

// runSearch submits a term to the search tab
func (m *Model) runSearch(term string) {
	term = strings.TrimSpace(term)
	if m.deps.History != nil {
		m.deps.History.Add(term)
	}
	t := m.tabFor(feed.ResourceSearch)
	t.ctrl.SetTerm(term)
	t.started = true
	t.list.ResetCursor()
	t.list.ClearFilter()
	for i := range m.tabs {
		if m.tabs[i] == t {
			m.activate(i)
		}
	}
	m.State = StateFeed
}

func (m *Model) suggest(input string) []string {
	if m.deps.History == nil {
		return nil
	}
	return m.deps.History.Suggest(input, suggestionCount)
}

// Detail

func (m *Model) author() domain.Author {
	if m.Me != nil {
		return m.Me.Author()
	}
	return domain.Author{Name: "You"}
}

func (m *Model) ownsPost(p domain.Post) bool {
	return m.LoggedIn && m.Me != nil && p.Author.ID == m.Me.ID
}

// openPost shows post in the detail screen
func (m *Model) openPost(post domain.Post) tea.Cmd {
	if m.State != StateDetail && m.State != StateHelp {
		m.prevState = m.State
	}
	m.State = StateDetail

	m.detail = &detailView{
		post:     post,
		like:     engagement.NewLikeToggle(m.deps.Likes, m.deps.Auth, post.ID, post.LikeCount, false, m.logger),
		thread:   engagement.NewCommentThread(m.deps.Comments, m.deps.Auth, post.ID, post.CommentCount, m.logger),
		viewport: viewport.New(m.Width, m.contentHeight()),
	}
	m.refreshDetail()

	return tea.Batch(
		LoadCommentsCmd(m.detail.thread),
		LoadRelatedCmd(m.deps.Posts, post.ID),
	)
}

// replaceDetailPost swaps in a fresher copy of the open post. The like toggle
// is rebuilt unless a toggle is in flight.
func (m *Model) replaceDetailPost(post domain.Post) {
	d := m.detail
	d.post = post
	if !d.like.InFlight() {
		d.like = engagement.NewLikeToggle(m.deps.Likes, m.deps.Auth, post.ID, post.LikeCount, d.like.Liked(), m.logger)
	}
	m.refreshDetail()
}

// refreshDetail re-renders the detail viewport content
func (m *Model) refreshDetail() {
	d := m.detail
	if d == nil {
		return
	}
	width := max(m.Width-4, 20)

	post := d.post
	post.CommentCount = d.thread.Count()

	comments := d.thread.Preview(engagement.PreviewSize)
	if d.showAll {
		comments = d.thread.Comments()
	}

	sections := []string{
		RenderPostHeader(post, d.like.Likes(), d.like.Liked(), width),
		"",
		RenderDocument(post.Content, width),
		"",
	}
	if !d.thread.Loaded() && d.thread.Err() == nil {
		sections = append(sections, RenderSpinner(m.SpinnerFrame)+" Loading comments...")
	} else {
		sections = append(sections, RenderComments(comments, d.thread.Count(), width))
	}
	if d.other != nil {
		sections = append(sections, "", RenderOtherPost(*d.other, width))
	}

	d.viewport.SetContent(strings.Join(sections, "\n"))
}

// Compose

func newComposeView(width int) *composeView {
	title := textinput.New()
	title.Placeholder = "Title"
	title.Prompt = "Title: "
	title.CharLimit = 200

	tags := textinput.New()
	tags.Placeholder = "go, terminal, tutorial"
	tags.Prompt = "Tags:  "

	c := &composeView{title: title, tags: tags, body: editor.New()}
	c.setWidth(width)
	return c
}

func (c *composeView) setWidth(width int) {
	c.title.Width = max(width-10, 10)
	c.tags.Width = max(width-10, 10)
}

func (c *composeView) setFocus(i int) tea.Cmd {
	c.focus = (i + 3) % 3
	c.title.Blur()
	c.tags.Blur()
	c.body.Blur()
	switch c.focus {
	case 0:
		return c.title.Focus()
	case 1:
		return c.tags.Focus()
	default:
		return c.body.Focus()
	}
}

func (c *composeView) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch c.focus {
	case 0:
		c.title, cmd = c.title.Update(msg)
	case 1:
		c.tags, cmd = c.tags.Update(msg)
	default:
		c.body, cmd = c.body.Update(msg)
	}
	return cmd
}

func (c *composeView) form() service.PostForm {
	return service.PostForm{
		Title:   c.title.Value(),
		Content: c.body.HTML(),
		Tags:    c.tags.Value(),
		Image:   c.image,
	}
}

func (c *composeView) dirty() bool {
	return c.title.Value() != "" || c.tags.Value() != "" || c.body.PlainText() != "" || c.image != nil
}

func (c *composeView) fieldError(name string) string {
	var verr *domain.ValidationError
	if errors.As(c.err, &verr) {
		return verr.Field(name)
	}
	return ""
}

// startCompose opens the authoring screen, prefilled when editing
func (m *Model) startCompose(post *domain.Post) tea.Cmd {
	if !m.LoggedIn {
		return m.setStatus("Log in (C-l) to write posts", true)
	}
	if m.State != StateCompose && m.State != StateHelp {
		m.prevState = m.State
	}
	m.State = StateCompose
	m.compose = newComposeView(m.Width)
	if post != nil {
		m.compose.postID = post.ID
		m.compose.title.SetValue(post.Title)
		m.compose.tags.SetValue(strings.Join(post.Tags, ", "))
		m.compose.body.SetContent(post.Content)
	}
	m.updateLayout()
	return m.compose.setFocus(0)
}

func (m Model) handleImageLoaded(msg ImageLoadedMsg) (tea.Model, tea.Cmd) {
	switch msg.Target {
	case imageForPost:
		if m.compose == nil {
			return m, nil
		}
		if msg.Err != nil {
			m.compose.err = domain.NewValidationError("image", msg.Err.Error())
			return m, nil
		}
		m.compose.image = msg.Upload
		m.compose.err = nil
		if msg.Upload == nil {
			return m, m.setStatus("Image removed", false)
		}
		return m, m.setStatus("Attached "+msg.Upload.FileName, false)

	case imageForAvatar:
		if !m.ProfileForm.IsVisible() {
			return m, nil
		}
		if msg.Err != nil {
			m.ProfileForm.SetError(domain.NewValidationError("avatar", msg.Err.Error()))
			return m, nil
		}
		return m, SaveProfileCmd(m.deps.Profiles, domain.ProfileUpdate{
			Name:     m.ProfileForm.Value("name"),
			Headline: m.ProfileForm.Value("headline"),
			Avatar:   msg.Upload,
		})
	}
	return m, nil
}

func (m Model) handlePostSaved(msg PostSavedMsg) (tea.Model, tea.Cmd) {
	if m.compose != nil {
		m.compose.busy = false
	}
	if msg.Err != nil {
		var verr *domain.ValidationError
		if m.compose != nil && errors.As(msg.Err, &verr) {
			m.compose.err = msg.Err
			return m, nil
		}
		return m, m.setStatus("Save failed: "+domain.UserMessage(msg.Err), true)
	}

	m.compose = nil
	m.State = m.prevState
	m.refreshStartedTabs()

	text := "Post updated"
	if msg.Created {
		text = "Post published"
	}
	if msg.Post != nil && m.detail != nil && m.detail.post.ID == msg.Post.ID {
		m.replaceDetailPost(*msg.Post)
	}
	return m, tea.Batch(m.setStatus(text, false), m.awaitTabs())
}

// Profile

func (m *Model) openProfile() tea.Cmd {
	if !m.LoggedIn {
		return m.setStatus("Log in (C-l) to see your profile", true)
	}
	if m.State != StateProfile && m.State != StateHelp {
		m.prevState = m.State
	}
	m.State = StateProfile
	t := m.tabFor(feed.ResourceMyPosts)
	t.list.SetFocused(true)
	m.ensureStarted(t)
	m.updateLayout()
	if m.Me == nil {
		return LoadProfileCmd(m.deps.Accounts)
	}
	return nil
}

func (m *Model) loadStats(post domain.Post) tea.Cmd {
	m.profile.statsFor = post.ID
	m.profile.stats.SetTitle(oneLine(post.Title))
	m.profile.stats.SetItems(nil)
	m.profile.stats.SetLoading(true)
	return LoadStatsCmd(m.deps.Profiles, post.ID)
}

func (m *Model) clearStats() {
	m.profile.statsFor = 0
	m.profile.stats.SetTitle("Likes & comments")
	m.profile.stats.SetItems(nil)
	m.profile.stats.SetMessage("Select a post and press i", false)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
