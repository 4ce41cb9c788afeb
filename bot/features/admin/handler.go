package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"clubauction/bot/common"
	"clubauction/models"
)

// Discord caps message content at 2000 characters
const maxMessageLength = 1900

func (f *Feature) handleAudit(s *discordgo.Session, i *discordgo.InteractionCreate, opts common.Options) {
	entries, err := f.snapshotService.AuditTail(context.Background(), int(opts.Int("limit")))
	if err != nil {
		common.RespondWithOutcome(s, i, "admin audit", err)
		return
	}
	if len(entries) == 0 {
		common.RespondWithMessage(s, i, "The audit log is empty.", true)
		return
	}

	common.RespondWithMessage(s, i, FormatAuditEntries(entries), true)
}

func (f *Feature) handleReport(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := common.DeferResponse(s, i, true); err != nil {
		log.WithError(err).Error("Failed to defer admin report response")
		return
	}

	report, err := f.reports.RunOnce(context.Background())
	content := "Weekly report posted."
	if err != nil {
		msg, unexpected := common.OutcomeMessage(err)
		if unexpected {
			log.WithError(err).Error("Failed to generate weekly report on demand")
		}
		content = "❌ " + msg
	} else if report.TotalSales == 0 {
		content = "Weekly report posted (no sales this week)."
	}

	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
		log.WithError(err).Error("Failed to edit admin report response")
	}
}

// FormatAuditEntries renders the newest-first audit tail, cutting it off
// before it exceeds a single Discord message
func FormatAuditEntries(entries []*models.AuditEntry) string {
	var b strings.Builder
	b.WriteString("```\n")
	for _, entry := range entries {
		line := fmt.Sprintf("%s  %s\n", entry.CreatedAt.UTC().Format("2006-01-02 15:04"), entry.Entry)
		if b.Len()+len(line)+3 > maxMessageLength {
			break
		}
		b.WriteString(line)
	}
	b.WriteString("```")
	return b.String()
}
