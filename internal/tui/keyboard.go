package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/quill/internal/domain"
	"github.com/mmcdole/quill/internal/editor"
	"github.com/mmcdole/quill/internal/feed"
	"github.com/mmcdole/quill/internal/service"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.State == StateHelp {
		m.State = m.prevState
		return m, nil
	}

	// Route to active modal if any
	if handled, newModel, cmd := m.routeToModal(msg); handled {
		return newModel, cmd
	}

	switch m.State {
	case StateCompose:
		return m.handleComposeKey(msg)
	case StateDetail:
		return m.handleDetailKey(msg)
	case StateProfile:
		return m.handleProfileKey(msg)
	default:
		return m.handleFeedKey(msg)
	}
}

// routeToModal sends the key to the visible modal. Only one is visible at a time.
func (m Model) routeToModal(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	switch {
	case m.Confirm.IsVisible():
		var answered, yes bool
		m.Confirm, answered, yes = m.Confirm.Update(msg)
		if !answered {
			return true, m, nil
		}
		purpose := m.confirm
		m.confirm = confirmNone
		if !yes {
			return true, m, nil
		}
		return true, m, m.confirmed(purpose)

	case m.LoginForm.IsVisible():
		var cmd tea.Cmd
		var submitted bool
		m.LoginForm, cmd, submitted = m.LoginForm.Update(msg)
		if submitted {
			m.LoginForm.SetBusy(true)
			cmd = LoginCmd(m.deps.Accounts, m.LoginForm.Value("email"), m.LoginForm.Value("password"))
		}
		return true, m, cmd

	case m.RegisterForm.IsVisible():
		var cmd tea.Cmd
		var submitted bool
		m.RegisterForm, cmd, submitted = m.RegisterForm.Update(msg)
		if submitted {
			m.RegisterForm.SetBusy(true)
			cmd = RegisterCmd(m.deps.Accounts, service.RegisterForm{
				Name:     m.RegisterForm.Value("name"),
				Email:    m.RegisterForm.Value("email"),
				Password: m.RegisterForm.Value("password"),
				Confirm:  m.RegisterForm.Value("confirmPassword"),
			})
		}
		return true, m, cmd

	case m.ProfileForm.IsVisible():
		var cmd tea.Cmd
		var submitted bool
		m.ProfileForm, cmd, submitted = m.ProfileForm.Update(msg)
		if submitted {
			m.ProfileForm.SetBusy(true)
			if path := m.ProfileForm.Value("avatar"); path != "" {
				cmd = LoadImageCmd(imageForAvatar, path)
			} else {
				cmd = SaveProfileCmd(m.deps.Profiles, domain.ProfileUpdate{
					Name:     m.ProfileForm.Value("name"),
					Headline: m.ProfileForm.Value("headline"),
				})
			}
		}
		return true, m, cmd

	case m.PasswordForm.IsVisible():
		var cmd tea.Cmd
		var submitted bool
		m.PasswordForm, cmd, submitted = m.PasswordForm.Update(msg)
		if submitted {
			m.PasswordForm.SetBusy(true)
			cmd = ChangePasswordCmd(m.deps.Profiles, domain.PasswordChange{
				Current: m.PasswordForm.Value("currentPassword"),
				New:     m.PasswordForm.Value("newPassword"),
				Confirm: m.PasswordForm.Value("confirmPassword"),
			})
		}
		return true, m, cmd

	case m.Prompt.IsVisible():
		var cmd tea.Cmd
		var submitted bool
		m.Prompt, cmd, submitted = m.Prompt.Update(msg)
		if m.prompt == promptSearch {
			m.Prompt.SetSuggestions(m.suggest(m.Prompt.Typed()))
		}
		if !m.Prompt.IsVisible() {
			m.prompt = promptNone
			return true, m, cmd
		}
		if submitted {
			value := m.Prompt.Value()
			purpose := m.prompt
			m.Prompt.Hide()
			m.prompt = promptNone
			return true, m, m.promptSubmitted(purpose, value)
		}
		return true, m, cmd
	}
	return false, m, nil
}

func (m *Model) showPrompt(purpose promptPurpose, title, placeholder, value string) {
	m.prompt = purpose
	m.Prompt.Show(title, placeholder, value)
	if purpose == promptSearch {
		m.Prompt.SetSuggestions(m.suggest(value))
	}
}

func (m *Model) showConfirm(purpose confirmPurpose, title, body string) {
	m.confirm = purpose
	m.Confirm.Show(title, body)
}

// promptSubmitted acts on the text entered in the prompt
func (m *Model) promptSubmitted(purpose promptPurpose, value string) tea.Cmd {
	switch purpose {
	case promptSearch:
		m.runSearch(value)
		return m.awaitTabs()

	case promptOpen:
		if strings.TrimSpace(value) == "" {
			return nil
		}
		return OpenPostCmd(m.deps.Posts, value)

	case promptComment:
		if m.detail == nil {
			return nil
		}
		pending, err := m.detail.thread.Begin(value, m.author())
		if err != nil {
			return m.setStatus(engagementMessage(err, "comment"), true)
		}
		m.refreshDetail()
		return SendCommentCmd(m.detail.thread, pending)

	case promptImage:
		return LoadImageCmd(imageForPost, value)

	case promptFormat:
		if m.compose == nil {
			return nil
		}
		name, arg, _ := strings.Cut(strings.TrimSpace(value), " ")
		cmd, ok := editor.ParseCommand(name)
		if !ok {
			return m.setStatus("Unknown format "+name+": use p h1 h2 h3 ul ol quote bold italic strike link clear", true)
		}
		m.compose.body.Apply(cmd, strings.TrimSpace(arg))
		return m.compose.setFocus(2)
	}
	return nil
}

// confirmed runs the action the user agreed to
func (m *Model) confirmed(purpose confirmPurpose) tea.Cmd {
	switch purpose {
	case confirmDelete:
		id := m.deleteID
		m.deleteID = 0
		return DeletePostCmd(m.deps.Posts, id)
	case confirmLogout:
		return LogoutCmd(m.deps.Accounts)
	case confirmDiscard:
		m.compose = nil
		m.State = m.prevState
	}
	return nil
}

// engagementMessage explains why a like or comment was refused
func engagementMessage(err error, action string) string {
	switch {
	case errors.Is(err, domain.ErrNotLoggedIn):
		return "Log in (C-l) to " + action
	case errors.Is(err, domain.ErrBusy):
		return "Still sending the previous " + action
	}
	return domain.UserMessage(err)
}

// handleGlobalKey handles keys shared by the browsing screens
func (m Model) handleGlobalKey(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Quit):
		return true, m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.prevState = m.State
		m.State = StateHelp
		return true, m, nil

	case key.Matches(msg, Keys.Search):
		term := m.tabFor(feed.ResourceSearch).ctrl.Term()
		m.showPrompt(promptSearch, "Search posts", "keywords", term)
		return true, m, nil

	case key.Matches(msg, Keys.Open):
		m.showPrompt(promptOpen, "Open post", "id, slug or /posts/{slug} URL", "")
		return true, m, nil

	case key.Matches(msg, Keys.Compose):
		cmd := m.startCompose(nil)
		return true, m, cmd

	case key.Matches(msg, Keys.Profile):
		cmd := m.openProfile()
		return true, m, cmd

	case key.Matches(msg, Keys.Login):
		if m.LoggedIn {
			return true, m, m.setStatus("Already logged in", false)
		}
		m.LoginForm.Show()
		return true, m, nil

	case key.Matches(msg, Keys.Register):
		if m.LoggedIn {
			return true, m, m.setStatus("Log out first to create another account", false)
		}
		m.RegisterForm.Show()
		return true, m, nil

	case key.Matches(msg, Keys.Logout):
		if !m.LoggedIn {
			return true, m, nil
		}
		m.showConfirm(confirmLogout, "Log out?", "This clears your credential and cached pages.")
		return true, m, nil
	}
	return false, m, nil
}

// handleFeedKey handles keys on the feed tabs
func (m Model) handleFeedKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.currentTab()

	// Filter typing owns the keyboard
	if t.list.IsFilterTyping() {
		return m, t.list.Update(msg)
	}

	if handled, newModel, cmd := m.handleGlobalKey(msg); handled {
		return newModel, cmd
	}

	switch {
	case key.Matches(msg, Keys.NextTab):
		m.activate(m.activeTab + 1)
		return m, nil

	case key.Matches(msg, Keys.PrevTab):
		m.activate(m.activeTab - 1)
		return m, nil

	case key.Matches(msg, Keys.NextPage):
		m.changePage(t, true)
		return m, m.awaitTabs()

	case key.Matches(msg, Keys.PrevPage):
		m.changePage(t, false)
		return m, m.awaitTabs()

	case key.Matches(msg, Keys.Refresh):
		t.ctrl.Refresh()
		m.syncTab(t)
		return m, m.awaitTabs()

	case key.Matches(msg, Keys.Filter):
		t.list.ToggleFilter()
		return m, nil

	case key.Matches(msg, Keys.Enter):
		if post := t.list.SelectedPost(); post != nil {
			return m, m.openPost(*post)
		}
		return m, nil

	case key.Matches(msg, Keys.Edit):
		if post := t.list.SelectedPost(); post != nil && m.ownsPost(*post) {
			return m, m.startCompose(post)
		}
		return m, nil

	case key.Matches(msg, Keys.Delete):
		if post := t.list.SelectedPost(); post != nil && m.ownsPost(*post) {
			m.deleteID = post.ID
			m.showConfirm(confirmDelete, "Delete post?", oneLine(post.Title))
		}
		return m, nil
	}

	return m, t.list.Update(msg)
}

// handleDetailKey handles keys on the post screen
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.detail
	if d == nil {
		m.State = StateFeed
		return m, nil
	}

	switch {
	case key.Matches(msg, Keys.Back):
		m.State = m.prevState
		if m.State == StateDetail || m.State == StateHelp {
			m.State = StateFeed
		}
		return m, nil

	case key.Matches(msg, Keys.Like):
		pending, err := d.like.Begin()
		if err != nil {
			return m, m.setStatus(engagementMessage(err, "like posts"), true)
		}
		m.refreshDetail()
		return m, SendLikeCmd(d.like, pending)

	case key.Matches(msg, Keys.Comment):
		if !m.LoggedIn {
			return m, m.setStatus("Log in (C-l) to comment", true)
		}
		m.showPrompt(promptComment, "Add a comment", "Write a comment...", "")
		return m, nil

	case key.Matches(msg, Keys.Comments):
		d.showAll = !d.showAll
		m.refreshDetail()
		return m, nil

	case key.Matches(msg, Keys.Other):
		if d.other != nil {
			return m, m.openPost(*d.other)
		}
		return m, nil

	case key.Matches(msg, Keys.Refresh):
		return m, tea.Batch(LoadPostCmd(m.deps.Posts, d.post.ID), LoadCommentsCmd(d.thread))

	case key.Matches(msg, Keys.Edit):
		if m.ownsPost(d.post) {
			post := d.post
			return m, m.startCompose(&post)
		}
		return m, nil

	case key.Matches(msg, Keys.Delete):
		if m.ownsPost(d.post) {
			m.deleteID = d.post.ID
			m.showConfirm(confirmDelete, "Delete post?", oneLine(d.post.Title))
		}
		return m, nil
	}

	if handled, newModel, cmd := m.handleGlobalKey(msg); handled {
		return newModel, cmd
	}

	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return m, cmd
}

// handleComposeKey handles keys on the authoring screen. Plain keys type.
func (m Model) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.compose
	if c == nil {
		m.State = StateFeed
		return m, nil
	}
	if c.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, Keys.Escape):
		if c.dirty() {
			m.showConfirm(confirmDiscard, "Discard draft?", "Your changes will be lost.")
			return m, nil
		}
		m.compose = nil
		m.State = m.prevState
		return m, nil

	case key.Matches(msg, Keys.Save):
		c.busy = true
		c.err = nil
		return m, SavePostCmd(m.deps.Posts, c.postID, c.form())

	case key.Matches(msg, Keys.Image):
		m.showPrompt(promptImage, "Cover image", "path to PNG/JPG, max 5MB (blank removes)", "")
		return m, nil

	case key.Matches(msg, Keys.Format):
		m.showPrompt(promptFormat, "Format current line", "h1 h2 h3 p ul ol quote bold italic strike link <url> clear", "")
		return m, nil

	case key.Matches(msg, Keys.NextTab):
		return m, c.setFocus(c.focus + 1)

	case key.Matches(msg, Keys.PrevTab):
		return m, c.setFocus(c.focus - 1)
	}

	return m, c.update(msg)
}

// handleProfileKey handles keys on the profile screen
func (m Model) handleProfileKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.tabFor(feed.ResourceMyPosts)

	if t.list.IsFilterTyping() {
		return m, t.list.Update(msg)
	}

	switch {
	case key.Matches(msg, Keys.Back):
		m.State = StateFeed
		m.activate(m.activeTab)
		return m, nil

	case key.Matches(msg, Keys.Edit):
		m.ProfileForm.Show()
		if m.Me != nil {
			m.ProfileForm.SetValue("name", m.Me.Name)
			m.ProfileForm.SetValue("headline", m.Me.Headline)
		}
		return m, nil

	case key.Matches(msg, Keys.Password):
		m.PasswordForm.Show()
		return m, nil

	case key.Matches(msg, Keys.Stats):
		if post := t.list.SelectedPost(); post != nil {
			return m, m.loadStats(*post)
		}
		return m, nil

	case key.Matches(msg, Keys.Delete):
		if post := t.list.SelectedPost(); post != nil {
			m.deleteID = post.ID
			m.showConfirm(confirmDelete, "Delete post?", oneLine(post.Title))
		}
		return m, nil

	case key.Matches(msg, Keys.Enter):
		if post := t.list.SelectedPost(); post != nil {
			return m, m.openPost(*post)
		}
		return m, nil

	case key.Matches(msg, Keys.NextPage):
		m.changePage(t, true)
		return m, m.awaitTabs()

	case key.Matches(msg, Keys.PrevPage):
		m.changePage(t, false)
		return m, m.awaitTabs()

	case key.Matches(msg, Keys.Refresh):
		t.ctrl.Refresh()
		m.syncTab(t)
		return m, tea.Batch(LoadProfileCmd(m.deps.Accounts), m.awaitTabs())

	case key.Matches(msg, Keys.Filter):
		t.list.ToggleFilter()
		return m, nil
	}

	if handled, newModel, cmd := m.handleGlobalKey(msg); handled {
		return newModel, cmd
	}
	return m, t.list.Update(msg)
}
