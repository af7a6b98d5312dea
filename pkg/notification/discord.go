package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ratlabs/ratl/pkg/config"
)

const (
	maxEmbedsPerMessage = 10
	maxCharactersPerMsg = 6000

	// hardcoded limit of fields to avoid hammering the api
	maxTotalFields = 250
)

type DiscordMessage struct {
	Content interface{}    `json:"content"`
	Embeds  []DiscordEmbed `json:"embeds,omitempty"`
}

type DiscordEmbed struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Color       int                  `json:"color"`
	Fields      []DiscordEmbedsField `json:"fields,omitempty"`
	Footer      DiscordEmbedsFooter  `json:"footer,omitempty"`
	Timestamp   time.Time            `json:"timestamp"`
}

type DiscordEmbedsFooter struct {
	Text string `json:"text"`
}

type DiscordEmbedsField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

const embedColor = 0x58b9ff

type discordSender struct {
	log    *logrus.Entry
	config config.NotificationsConfig

	httpClient *http.Client
}

func (d *discordSender) Name() string {
	return "discord"
}

func NewDiscordSender(log *logrus.Entry, cfg config.NotificationsConfig) Sender {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil

	return &discordSender{
		log:        log.WithField("sender", "discord"),
		config:     cfg,
		httpClient: rc.StandardClient(),
	}
}

func (d *discordSender) CanSend() bool {
	return d.config.Service.Discord != ""
}

// Send posts the run summary, optionally with one embed per linked pair.
func (d *discordSender) Send(title string, description string, runTime time.Duration, fields []Field, dryRun bool) error {
	if dryRun {
		title = title + " (Dry Run)"
	}

	totalFields := len(fields)
	if totalFields == 0 && d.config.SkipEmptyRun {
		return nil
	}

	timestamp := time.Now()
	rt := runTime.Truncate(time.Millisecond).String()

	var allEmbeds []DiscordEmbed

	if totalFields == 0 || totalFields > maxTotalFields || !d.config.Detailed {
		allEmbeds = append(allEmbeds, DiscordEmbed{
			Title:       title,
			Description: description,
			Color:       embedColor,
			Footer:      DiscordEmbedsFooter{Text: fmt.Sprintf("Took: %s", rt)},
			Timestamp:   timestamp,
		})
	} else {
		for i, field := range fields {
			allEmbeds = append(allEmbeds, DiscordEmbed{
				Title:       title,
				Description: fmt.Sprintf("**%s**", field.Name),
				Color:       embedColor,
				Fields:      d.parseFieldValueToInlineFields(field.Value),
				Footer:      DiscordEmbedsFooter{Text: fmt.Sprintf("%d/%d | Took: %s", i+1, totalFields, rt)},
				Timestamp:   timestamp,
			})
		}
		allEmbeds = append(allEmbeds, DiscordEmbed{
			Title:       fmt.Sprintf("%s - Summary", title),
			Description: description,
			Color:       embedColor,
			Footer:      DiscordEmbedsFooter{Text: fmt.Sprintf("Took: %s", rt)},
			Timestamp:   timestamp,
		})
	}

	// batch embeds per message, capped on count and character size
	var (
		batches      [][]DiscordEmbed
		currentBatch []DiscordEmbed
		currentChars int
	)

	flush := func() {
		if len(currentBatch) == 0 {
			return
		}
		batches = append(batches, currentBatch)
		currentBatch = nil
		currentChars = 0
	}

	for _, e := range allEmbeds {
		jsonData, err := json.Marshal(e)
		if err != nil {
			return errors.Wrap(err, "calculate embed size for batching")
		}

		if len(currentBatch) >= maxEmbedsPerMessage || currentChars+len(jsonData) > maxCharactersPerMsg {
			flush()
		}

		currentBatch = append(currentBatch, e)
		currentChars += len(jsonData)
	}
	flush()

	for i, batch := range batches {
		jsonData, err := json.Marshal(DiscordMessage{Content: nil, Embeds: batch})
		if err != nil {
			return errors.Wrap(err, "marshal message chunk")
		}
		if err := d.sendRequest(jsonData); err != nil {
			return errors.Wrap(err, "send message chunk to discord")
		}

		d.log.Debugf("Sent Discord message %d/%d (%d embeds, %d chars).",
			i+1, len(batches), len(batch), len(jsonData))
	}

	return nil
}

func (d *discordSender) sendRequest(jsonData []byte) error {
	req, err := http.NewRequest(http.MethodPost, d.config.Service.Discord, bytes.NewBuffer(jsonData))
	if err != nil {
		return errors.Wrap(err, "create request")
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := d.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "client request error")
	}
	defer res.Body.Close()

	d.log.Tracef("Discord response status: %d", res.StatusCode)

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusNoContent {
		body, readErr := io.ReadAll(res.Body)
		if readErr != nil {
			return errors.Wrap(readErr, "read response body")
		}

		return errors.Errorf("unexpected status: %v body: %v", res.StatusCode, string(body))
	}

	d.log.Debug("Notification successfully sent to discord")
	return nil
}

// BuildField constructs a Field describing one linked target/source pair.
func (d *discordSender) BuildField(target string, source string, size int64) Field {
	inlineFields := []DiscordEmbedsField{
		{
			Name:   "Linked",
			Value:  target,
			Inline: false,
		},
		{
			Name:   "To",
			Value:  source,
			Inline: false,
		},
		{
			Name:   "Size",
			Value:  humanize.IBytes(uint64(size)),
			Inline: true,
		},
	}

	jsonData, _ := json.Marshal(inlineFields)

	return Field{
		Name:  target,
		Value: string(jsonData),
	}
}

func (d *discordSender) parseFieldValueToInlineFields(value string) []DiscordEmbedsField {
	var fields []DiscordEmbedsField
	if err := json.Unmarshal([]byte(value), &fields); err != nil {
		d.log.WithError(err).Error("Failed to parse field value as JSON")
		return []DiscordEmbedsField{}
	}
	return fields
}
