package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/five82/tubarr-tui/internal/tubarr"
	"github.com/five82/tubarr-tui/internal/views"
)

func TestAddModalRequiresPathAndSubmits(t *testing.T) {
	m, _, _ := newTestModel(t)
	keys := DefaultKeyMap()
	form := views.AddForm{PlatformID: "UC1", Name: "Chan", URL: "https://youtube.com/@chan", Quality: "1080p"}
	a := newAddModal(context.Background(), m.c.Search, form)

	_, cmd, closed := a.Update(keyMsg("enter"), keys)
	if closed || cmd != nil || a.err == "" {
		t.Fatalf("empty path: closed=%v cmd=%v err=%q", closed, cmd != nil, a.err)
	}

	a.inputs[addFieldPath].SetValue("/media/youtube")
	_, cmd, closed = a.Update(keyMsg("enter"), keys)
	if !closed || cmd == nil {
		t.Fatalf("valid form: closed=%v cmd=%v", closed, cmd != nil)
	}
	// The result was never part of a search, so the controller refuses it.
	msg, ok := cmd().(opDoneMsg)
	if !ok || !errors.Is(msg.err, views.ErrUnknownResult) {
		t.Fatalf("submit msg = %#v", msg)
	}
}

func TestAddModalToggles(t *testing.T) {
	m, _, _ := newTestModel(t)
	keys := DefaultKeyMap()
	a := newAddModal(context.Background(), m.c.Search, views.AddForm{PlatformID: "UC1", Monitored: true})

	a.Update(keyMsg("tab"), keys)
	a.Update(keyMsg("tab"), keys)
	if a.focus != addFieldMonitored {
		t.Fatalf("focus = %d, want monitored", a.focus)
	}
	a.Update(keyMsg(" "), keys)
	if a.form.Monitored {
		t.Fatalf("space did not toggle monitored")
	}
	a.Update(keyMsg("tab"), keys)
	a.Update(keyMsg(" "), keys)
	if !a.form.DownloadAll {
		t.Fatalf("space did not toggle download all")
	}
	a.Update(keyMsg("tab"), keys)
	if a.focus != addFieldQuality {
		t.Fatalf("focus did not wrap: %d", a.focus)
	}

	// Typing into a text field does not toggle anything.
	a.Update(keyMsg(" "), keys)
	if a.form.Monitored || !a.form.DownloadAll {
		t.Fatalf("toggles changed while editing quality: %+v", a.form)
	}
}

func TestPlaylistModalCursorAndCancel(t *testing.T) {
	keys := DefaultKeyMap()
	var p Modal = playlistModal{playlist: tubarr.Playlist{PlaylistID: "PL1", Title: "Shorts"}}

	p, _, _ = p.Update(keyMsg("k"), keys)
	if got := p.(playlistModal).cursor; got != 0 {
		t.Fatalf("cursor = %d, want 0 at top", got)
	}
	for range 5 {
		p, _, _ = p.Update(keyMsg("j"), keys)
	}
	if got := p.(playlistModal).cursor; got != len(playlistChoices)-1 {
		t.Fatalf("cursor = %d, want last", got)
	}
	_, cmd, closed := p.Update(keyMsg("esc"), keys)
	if !closed || cmd != nil {
		t.Fatalf("esc: closed=%v cmd=%v", closed, cmd != nil)
	}
}

func TestDialogViewsRender(t *testing.T) {
	th := GetTheme("Slate")
	notice := noticeModal{title: "Error", text: "Channel already exists"}.View(th, 80, 20)
	if !strings.Contains(notice, "Channel already exists") {
		t.Fatalf("notice view missing text:\n%s", notice)
	}
	pl := playlistModal{playlist: tubarr.Playlist{Title: "Shorts", VideoCount: 4}}.View(th, 80, 20)
	if !strings.Contains(pl, "Shorts") || !strings.Contains(pl, "Stop monitoring") {
		t.Fatalf("playlist view:\n%s", pl)
	}
}
