package ticketing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/Jacobbrewer1/ticketdesk/pkg/messages"
	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

const (
	// historyPageSize is the most messages the platform returns per request.
	historyPageSize = 100

	// transcriptTimeLayout is the timestamp layout of a transcript line.
	transcriptTimeLayout = "2006-01-02 15:04"
)

// historyPager reads a channel's history oldest first, one page at a time.
type historyPager struct {
	platform  Platform
	channelID string
	limiter   *rate.Limiter

	// after is the ID of the newest message read so far.
	after string
	done  bool
}

func newHistoryPager(platform Platform, channelID string, limit rate.Limit) *historyPager {
	if limit <= 0 {
		limit = rate.Inf
	}
	return &historyPager{
		platform:  platform,
		channelID: channelID,
		limiter:   rate.NewLimiter(limit, 1),
		after:     "0",
	}
}

// Next returns the next page of messages in ascending order. It returns io.EOF once the history is exhausted.
func (p *historyPager) Next(ctx context.Context) ([]*discordgo.Message, error) {
	if p.done {
		return nil, io.EOF
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("error waiting for history page: %w", err)
	}

	page, err := p.platform.Messages(p.channelID, historyPageSize, p.after)
	if err != nil {
		return nil, fmt.Errorf("error getting messages after %s: %w", p.after, err)
	}

	if len(page) < historyPageSize {
		p.done = true
	}
	if len(page) == 0 {
		return nil, io.EOF
	}

	// The platform does not guarantee the order of a page.
	sort.SliceStable(page, func(a, b int) bool {
		return snowflakeLess(page[a].ID, page[b].ID)
	})
	p.after = page[len(page)-1].ID
	return page, nil
}

// snowflakeLess orders snowflake IDs by creation.
func snowflakeLess(a, b string) bool {
	x, errA := strconv.ParseUint(a, 10, 64)
	y, errB := strconv.ParseUint(b, 10, 64)
	if errA != nil || errB != nil {
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	}
	return x < y
}

// writeTranscript writes the full history of the channel to w and returns the number of messages written.
func writeTranscript(ctx context.Context, w io.Writer, pager *historyPager, channelName string) (int, error) {
	if _, err := fmt.Fprintf(w, messages.TranscriptHeader, channelName); err != nil {
		return 0, fmt.Errorf("error writing transcript header: %w", err)
	}

	count := 0
	for {
		page, err := pager.Next(ctx)
		if err == io.EOF {
			return count, nil
		} else if err != nil {
			return count, err
		}

		for _, m := range page {
			if _, err := io.WriteString(w, transcriptLine(m)); err != nil {
				return count, fmt.Errorf("error writing transcript line: %w", err)
			}
			count++
		}
	}
}

// lineBreaks escapes line breaks so every message stays on one transcript line.
var lineBreaks = strings.NewReplacer("\r\n", `\n`, "\n", `\n`, "\r", `\n`)

func transcriptLine(m *discordgo.Message) string {
	author := "unknown"
	if m.Author != nil {
		author = m.Author.String()
	}
	return fmt.Sprintf("[%s] %s: %s\n", m.Timestamp.UTC().Format(transcriptTimeLayout), author, lineBreaks.Replace(m.Content))
}

// exportTranscript renders the transcript of a channel into memory.
func (s *Service) exportTranscript(ctx context.Context, channel *discordgo.Channel) (*bytes.Buffer, int, error) {
	buf := new(bytes.Buffer)
	pager := newHistoryPager(s.platform, channel.ID, s.opts.HistoryRateLimit)

	count, err := writeTranscript(ctx, buf, pager, channel.Name)
	if err != nil {
		return nil, count, fmt.Errorf("error exporting transcript: %w", err)
	}
	return buf, count, nil
}
