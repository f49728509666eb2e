package models

import (
	"sort"
	"time"
)

// TicketStatus represents the lifecycle state of a helpdesk ticket.
type TicketStatus string

const (
	// TicketStatusOpen indicates the ticket awaits an agent.
	TicketStatusOpen TicketStatus = "open"
	// TicketStatusPending indicates the ticket awaits the customer.
	TicketStatusPending TicketStatus = "pending"
	// TicketStatusResolved indicates the ticket has been answered.
	TicketStatusResolved TicketStatus = "resolved"
	// TicketStatusClosed indicates the ticket is closed.
	TicketStatusClosed TicketStatus = "closed"
	// TicketStatusUnknown is used when the helpdesk reports an unmapped code.
	TicketStatusUnknown TicketStatus = "unknown"
)

// Valid returns true if the status is a known value.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusPending, TicketStatusResolved, TicketStatusClosed:
		return true
	default:
		return false
	}
}

// TicketPriority represents the urgency assigned to a ticket.
type TicketPriority string

const (
	// TicketPriorityLow is the lowest priority.
	TicketPriorityLow TicketPriority = "low"
	// TicketPriorityMedium is the default priority.
	TicketPriorityMedium TicketPriority = "medium"
	// TicketPriorityHigh needs attention soon.
	TicketPriorityHigh TicketPriority = "high"
	// TicketPriorityUrgent needs attention now.
	TicketPriorityUrgent TicketPriority = "urgent"
	// TicketPriorityUnknown is used when the helpdesk reports an unmapped code.
	TicketPriorityUnknown TicketPriority = "unknown"
)

// Valid returns true if the priority is a known value.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	default:
		return false
	}
}

// Customer identifies the requester of a ticket.
type Customer struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Ticket is an immutable snapshot of a helpdesk ticket.
type Ticket struct {
	// ID is the helpdesk ticket number.
	ID int64 `json:"id"`
	// Subject is the ticket subject line.
	Subject string `json:"subject"`
	// Status is the ticket lifecycle state.
	Status TicketStatus `json:"status"`
	// Priority is the ticket urgency.
	Priority TicketPriority `json:"priority"`
	// RequesterID references the customer who opened the ticket.
	RequesterID int64 `json:"requesterId"`
	// CreatedAt is when the ticket was opened.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is when the ticket last changed.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Direction tells whether a message came from the customer or from staff.
type Direction string

const (
	// DirectionInbound is a customer message.
	DirectionInbound Direction = "inbound"
	// DirectionOutbound is a staff reply.
	DirectionOutbound Direction = "outbound"
)

// Message is a single entry in a ticket thread.
type Message struct {
	// ID is the conversation ID, or "ticket-<id>" for the ticket description.
	ID string `json:"id"`
	// Body is the plain-text message body.
	Body string `json:"body"`
	// Direction tells who wrote the message.
	Direction Direction `json:"direction"`
	// AuthorID references the helpdesk user who wrote the message.
	AuthorID int64 `json:"authorId"`
	// CreatedAt is when the message was written.
	CreatedAt time.Time `json:"createdAt"`
	// Initial marks the message that opened the thread.
	Initial bool `json:"initial"`
}

// Inbound returns true if the customer wrote the message.
func (m Message) Inbound() bool {
	return m.Direction == DirectionInbound
}

// Thread is the chronological list of messages on a ticket.
type Thread []Message

// SortChronological orders the thread by creation time, keeping the
// original order for messages with equal timestamps.
func (t Thread) SortChronological() {
	sort.SliceStable(t, func(i, j int) bool {
		return t[i].CreatedAt.Before(t[j].CreatedAt)
	})
}

// TicketData bundles everything fetched from the helpdesk for one ticket.
type TicketData struct {
	Ticket       Ticket   `json:"ticket"`
	Customer     Customer `json:"customer"`
	Thread       Thread   `json:"conversations"`
	MessageCount int      `json:"emailCount"`
}
