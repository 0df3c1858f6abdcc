// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"time"

	"github.com/jeranaias/medchat-tui/internal/model"
	"github.com/jeranaias/medchat-tui/internal/store"
	"github.com/jeranaias/medchat-tui/internal/util"
)

// SidebarItem is one conversation in the list.
type SidebarItem struct {
	ID     model.ID
	Title  string
	Date   string
	Active bool
}

// Sidebar projects the conversation list of s. Dates are relative to now.
// Titles named after a multi-line first question show its first line.
func Sidebar(s *store.Session, now time.Time) []SidebarItem {
	current, _ := s.Current()
	items := make([]SidebarItem, 0, len(s.Conversations))
	for _, c := range s.Conversations {
		items = append(items, SidebarItem{
			ID:     c.ID,
			Title:  sidebarTitle(c),
			Date:   RelativeDate(c.Updated(), now),
			Active: c.ID == current,
		})
	}
	return items
}

func sidebarTitle(c model.Conversation) string {
	if title := util.FirstLine(c.DisplayTitle()); title != "" {
		return title
	}
	return model.DefaultTitle
}

// RelativeDate labels t the way the conversation list does: 오늘, 어제,
// N일 전 within a week, otherwise month and day. A zero time has no label.
func RelativeDate(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	days := int(now.Sub(t) / (24 * time.Hour))
	switch {
	case days <= 0:
		return "오늘"
	case days == 1:
		return "어제"
	case days < 7:
		return fmt.Sprintf("%d일 전", days)
	}
	local := t.In(now.Location())
	return fmt.Sprintf("%d월 %d일", int(local.Month()), local.Day())
}
