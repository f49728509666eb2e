// Package bot is the Discord front end. It listens for prefixed commands
// in guild channels and answers "ticket <id>" with an analysis embed
// fetched from the HTTP API.
package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/ShayCichocki/ticketpilot/internal/logging"
	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

// DefaultPrefix starts every command.
const DefaultPrefix = "!"

var numericID = regexp.MustCompile(`^\d+$`)

// TicketAnalyzer produces an analysis for a ticket.
type TicketAnalyzer interface {
	Analyze(ctx context.Context, ticketID int64, userID, channelID string) (*models.AnalysisResult, error)
}

// Messenger is the part of a Discord session the bot writes through.
type Messenger interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Config configures the bot.
type Config struct {
	Token  string
	Prefix string
	Logger *zap.Logger
}

// Bot routes chat commands to the analyzer.
type Bot struct {
	session  *discordgo.Session
	msgr     Messenger
	analyzer TicketAnalyzer
	prefix   string
	logger   *zap.Logger
	ctx      context.Context
}

// New creates a bot with a Discord session for cfg.Token.
func New(cfg Config, analyzer TicketAnalyzer) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("DISCORD_BOT_TOKEN is required")
	}
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	b := newBot(session, analyzer, cfg)
	b.session = session
	session.AddHandler(b.onReady)
	session.AddHandler(b.onMessageCreate)
	return b, nil
}

func newBot(msgr Messenger, analyzer TicketAnalyzer, cfg Config) *Bot {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Bot{
		msgr:     msgr,
		analyzer: analyzer,
		prefix:   prefix,
		logger:   logging.OrNop(cfg.Logger),
		ctx:      context.Background(),
	}
}

// Run connects to Discord and handles messages until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	defer b.session.Close()

	<-ctx.Done()
	b.logger.Info("discord bot shutting down")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("discord bot logged in",
		zap.String("user", r.User.Username),
		zap.Int("guilds", len(r.Guilds)),
	)
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.handleMessage(b.ctx, m.Message)
}

// Command is a parsed chat command.
type Command struct {
	Name string
	Args []string
}

// ParseCommand splits a prefixed message into a lowercased command name
// and its arguments. ok is false when content does not start with prefix
// or names no command.
func ParseCommand(prefix, content string) (cmd Command, ok bool) {
	if !strings.HasPrefix(content, prefix) {
		return Command{}, false
	}
	fields := strings.Fields(content[len(prefix):])
	if len(fields) == 0 {
		return Command{}, false
	}
	return Command{Name: strings.ToLower(fields[0]), Args: fields[1:]}, true
}

func (b *Bot) handleMessage(ctx context.Context, m *discordgo.Message) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	cmd, ok := ParseCommand(b.prefix, m.Content)
	if !ok {
		return
	}

	var err error
	switch cmd.Name {
	case "ticket":
		err = b.ticketCommand(ctx, m, cmd.Args)
	case "help":
		err = b.reply(m, BuildHelpEmbed(b.prefix))
	default:
		return
	}
	if err != nil {
		b.logger.Error("command failed", zap.String("command", cmd.Name), zap.Error(err))
		_, _ = b.msgr.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
			Content:   "An error occurred while executing this command.",
			Reference: m.Reference(),
		})
	}
}

func (b *Bot) ticketCommand(ctx context.Context, m *discordgo.Message, args []string) error {
	if len(args) == 0 {
		return b.reply(m, BuildErrorEmbed(fmt.Sprintf("Please provide a ticket ID. Usage: `%sticket <ticket_id>`", b.prefix), ""))
	}
	raw := args[0]
	if !numericID.MatchString(raw) {
		return b.reply(m, BuildErrorEmbed("Invalid ticket ID. Please provide a numeric ticket ID.", ""))
	}
	ticketID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return b.reply(m, BuildErrorEmbed("Invalid ticket ID. Please provide a numeric ticket ID.", ""))
	}

	loading, err := b.msgr.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embeds:    []*discordgo.MessageEmbed{BuildLoadingEmbed(raw)},
		Reference: m.Reference(),
	})
	if err != nil {
		return fmt.Errorf("send loading message: %w", err)
	}

	b.logger.Info("analyzing ticket", zap.Int64("ticket_id", ticketID), zap.String("requested_by", m.Author.Username))

	var embed *discordgo.MessageEmbed
	result, err := b.analyzer.Analyze(ctx, ticketID, m.Author.ID, m.ChannelID)
	switch {
	case err != nil:
		b.logger.Error("ticket analysis failed", zap.Int64("ticket_id", ticketID), zap.Error(err))
		embed = BuildErrorEmbed(ErrorMessage(err, raw), raw)
	case !result.Success:
		embed = BuildErrorEmbed("Failed to analyze ticket", raw)
	default:
		embed = BuildTicketEmbed(result)
		b.logger.Info("ticket analysis completed", zap.Int64("ticket_id", ticketID), zap.Int64("processing_ms", result.ProcessingTime))
	}

	embeds := []*discordgo.MessageEmbed{embed}
	_, err = b.msgr.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:      loading.ID,
		Channel: loading.ChannelID,
		Embeds:  &embeds,
	})
	if err != nil {
		return fmt.Errorf("edit loading message: %w", err)
	}
	return nil
}

func (b *Bot) reply(m *discordgo.Message, embed *discordgo.MessageEmbed) error {
	_, err := b.msgr.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embeds:    []*discordgo.MessageEmbed{embed},
		Reference: m.Reference(),
	})
	return err
}

// ErrorMessage turns an analysis failure into an operator-facing line.
func ErrorMessage(err error, ticketID string) string {
	var be *BackendError
	if errors.As(err, &be) {
		switch be.StatusCode {
		case http.StatusNotFound:
			return fmt.Sprintf("Ticket #%s not found in Freshdesk.", ticketID)
		case http.StatusUnauthorized, http.StatusForbidden:
			return "Authentication failed. Please check API credentials."
		case http.StatusServiceUnavailable:
			return "A downstream service is unavailable. Please try again shortly."
		case http.StatusGatewayTimeout:
			return "The analysis took too long. Please try again."
		}
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return "Could not connect to backend service."
	}
	return "An unexpected error occurred while analyzing the ticket."
}
