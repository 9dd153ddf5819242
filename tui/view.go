package tui

import (
	"fmt"
	"strings"

	"vizbot/app/services"
)

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("🎛️ vizbot batch monitor"))
	b.WriteString("\n\n")

	for i, job := range m.Jobs {
		name := job.Name
		if name == "" {
			name = fmt.Sprintf("job %d", i+1)
		}
		line := fmt.Sprintf("%s %s", stageIcon(job.Stage), name)
		if job.Encoder != "" {
			line += InfoStyle.Render("  [" + job.Encoder + "]")
		}
		switch job.Stage {
		case services.StageError:
			b.WriteString(ErrorStyle.Render(line))
			if job.Err != nil {
				b.WriteString("\n")
				b.WriteString(ErrorStyle.Render("     " + job.Err.Error()))
			}
		case services.StageDone, services.StageSkipped:
			b.WriteString(StatusStyle.Render(line))
		default:
			b.WriteString(InfoStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	summary := fmt.Sprintf("📊 %d/%d done | %d failed", m.Done, m.Total, m.Failed)
	if m.Finished {
		b.WriteString(BoxStyle.Render(HighlightStyle.Render("Batch complete") + "\n" + summary))
		b.WriteString("\n")
		b.WriteString(InfoStyle.Render("Press q to exit"))
	} else {
		b.WriteString(InfoStyle.Render(summary))
		b.WriteString("\n")
		b.WriteString(InfoStyle.Render("Press q to quit"))
	}
	b.WriteString("\n")

	return b.String()
}

func stageIcon(stage services.BatchStage) string {
	switch stage {
	case services.StageRendering:
		return "🎬"
	case services.StageDone:
		return "✅"
	case services.StageSkipped:
		return "⏭️"
	case services.StageError:
		return "❌"
	default:
		return "⏳"
	}
}
