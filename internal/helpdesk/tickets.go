package helpdesk

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ShayCichocki/ticketpilot/pkg/models"
)

// ticket is the subset of the Freshdesk ticket payload we read.
type ticket struct {
	ID              int64     `json:"id"`
	Subject         string    `json:"subject"`
	Status          int       `json:"status"`
	Priority        int       `json:"priority"`
	RequesterID     int64     `json:"requester_id"`
	Description     string    `json:"description"`
	DescriptionText string    `json:"description_text"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Requester       *contact  `json:"requester,omitempty"`
}

type conversation struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	BodyText  string    `json:"body_text"`
	Incoming  bool      `json:"incoming"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type contact struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// statusNames maps Freshdesk status codes.
var statusNames = map[int]models.TicketStatus{
	2: models.TicketStatusOpen,
	3: models.TicketStatusPending,
	4: models.TicketStatusResolved,
	5: models.TicketStatusClosed,
}

// priorityNames maps Freshdesk priority codes.
var priorityNames = map[int]models.TicketPriority{
	1: models.TicketPriorityLow,
	2: models.TicketPriorityMedium,
	3: models.TicketPriorityHigh,
	4: models.TicketPriorityUrgent,
}

// StatusFromCode maps a Freshdesk status code to a TicketStatus.
func StatusFromCode(code int) models.TicketStatus {
	if s, ok := statusNames[code]; ok {
		return s
	}
	return models.TicketStatusUnknown
}

// PriorityFromCode maps a Freshdesk priority code to a TicketPriority.
func PriorityFromCode(code int) models.TicketPriority {
	if p, ok := priorityNames[code]; ok {
		return p
	}
	return models.TicketPriorityUnknown
}

func (c *Client) getTicket(ctx context.Context, id int64) (*ticket, error) {
	c.logger.Info("fetching ticket", zap.Int64("ticket_id", id))
	var t ticket
	if err := c.get(ctx, fmt.Sprintf("/tickets/%d", id), &t); err != nil {
		c.logger.Error("failed to fetch ticket", zap.Int64("ticket_id", id), zap.Error(err))
		return nil, err
	}
	return &t, nil
}

func (c *Client) getConversations(ctx context.Context, id int64) ([]conversation, error) {
	c.logger.Info("fetching conversations", zap.Int64("ticket_id", id))
	var convs []conversation
	if err := c.get(ctx, fmt.Sprintf("/tickets/%d/conversations", id), &convs); err != nil {
		c.logger.Error("failed to fetch conversations", zap.Int64("ticket_id", id), zap.Error(err))
		return nil, err
	}
	return convs, nil
}

// getRequester returns nil when the contact cannot be fetched.
func (c *Client) getRequester(ctx context.Context, id int64) *contact {
	var ct contact
	if err := c.get(ctx, fmt.Sprintf("/contacts/%d", id), &ct); err != nil {
		c.logger.Warn("failed to fetch requester", zap.Int64("requester_id", id), zap.Error(err))
		return nil
	}
	return &ct
}

// GetFullTicketData fetches a ticket with its full thread and requester.
// The ticket description becomes the initial inbound message. A failed
// requester lookup falls back to the requester embedded in the ticket.
func (c *Client) GetFullTicketData(ctx context.Context, ticketID int64) (*models.TicketData, error) {
	t, err := c.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	var (
		convs     []conversation
		requester *contact
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		convs, err = c.getConversations(gctx, ticketID)
		return err
	})
	if t.RequesterID != 0 {
		g.Go(func() error {
			requester = c.getRequester(gctx, t.RequesterID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	thread := buildThread(t, convs)
	return &models.TicketData{
		Ticket: models.Ticket{
			ID:          t.ID,
			Subject:     t.Subject,
			Status:      StatusFromCode(t.Status),
			Priority:    PriorityFromCode(t.Priority),
			RequesterID: t.RequesterID,
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		},
		Customer:     customerOf(t, requester),
		Thread:       thread,
		MessageCount: len(thread),
	}, nil
}

func buildThread(t *ticket, convs []conversation) models.Thread {
	thread := make(models.Thread, 0, len(convs)+1)

	if t.DescriptionText != "" || t.Description != "" {
		body := t.DescriptionText
		if body == "" {
			body = StripHTML(t.Description)
		}
		thread = append(thread, models.Message{
			ID:        "ticket-" + strconv.FormatInt(t.ID, 10),
			Body:      body,
			Direction: models.DirectionInbound,
			AuthorID:  t.RequesterID,
			CreatedAt: t.CreatedAt,
			Initial:   true,
		})
	}

	for _, conv := range convs {
		body := conv.BodyText
		if body == "" {
			body = StripHTML(conv.Body)
		}
		dir := models.DirectionOutbound
		if conv.Incoming {
			dir = models.DirectionInbound
		}
		thread = append(thread, models.Message{
			ID:        strconv.FormatInt(conv.ID, 10),
			Body:      body,
			Direction: dir,
			AuthorID:  conv.UserID,
			CreatedAt: conv.CreatedAt,
		})
	}

	thread.SortChronological()
	return thread
}

func customerOf(t *ticket, requester *contact) models.Customer {
	if requester != nil {
		return models.Customer{ID: requester.ID, Email: requester.Email, Name: requester.Name}
	}
	cust := models.Customer{ID: t.RequesterID, Email: "Unknown", Name: "Unknown"}
	if t.Requester != nil {
		if t.Requester.Email != "" {
			cust.Email = t.Requester.Email
		}
		if t.Requester.Name != "" {
			cust.Name = t.Requester.Name
		}
	}
	return cust
}
