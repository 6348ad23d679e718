package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/mansidw/aakar-cli/internal/domain"
	"github.com/mansidw/aakar-cli/internal/domain/entity"
)

var (
	sessionStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	userStyle    = lipgloss.NewStyle().Foreground(ColorUser)
	botStyle     = lipgloss.NewStyle().Foreground(ColorSuccess)
)

const previewWidth = 60

// RenderSessionTree renders remote sessions as a tree. When messages is
// non-nil each session lists a one-line preview per message.
func RenderSessionTree(userID string, sessions []domain.RemoteSession, messages map[string][]domain.RemoteMessage) string {
	if len(sessions) == 0 {
		return Styles.Muted.Render("No sessions found")
	}

	root := tree.Root(fmt.Sprintf("User: %s", Styles.Highlight.Render(userID)))
	for _, s := range sessions {
		name := s.Name
		if name == "" {
			name = "Session " + s.ID
		}
		label := sessionStyle.Render(name) + Styles.Muted.Render(" ("+s.ID+")")
		if !s.CreatedAt.IsZero() {
			label += Styles.Muted.Render(" " + s.CreatedAt.Local().Format("2006-01-02 15:04"))
		}

		node := tree.Root(label)
		if messages != nil {
			log := messages[s.ID]
			if len(log) == 0 {
				node.Child(Styles.Muted.Render("(no messages)"))
			}
			for _, m := range log {
				node.Child(messagePreview(m))
			}
		}
		root.Child(node)
	}

	return root.String() + "\n" + Styles.Muted.Render(fmt.Sprintf("%d session(s)", len(sessions)))
}

func messagePreview(m domain.RemoteMessage) string {
	who := botStyle.Render("assistant")
	if entity.ParseSender(m.Sender) == entity.SenderUser {
		who = userStyle.Render("user")
	}

	kind := strings.ToLower(m.Type)
	if kind == "" {
		kind = "text"
	}

	preview := strings.Join(strings.Fields(m.Content), " ")
	switch kind {
	case "pdf", "docx":
		preview = m.FileName
		if preview == "" {
			preview = "report." + kind
		}
	case "html":
		if md, err := HTMLToMarkdown(m.Content); err == nil {
			preview = strings.Join(strings.Fields(md), " ")
		}
	}

	return fmt.Sprintf("%s %s %s", who, Styles.Muted.Render("["+kind+"]"), Truncate(preview, previewWidth))
}
