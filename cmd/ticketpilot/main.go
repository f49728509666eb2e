// Command ticketpilot triages helpdesk tickets: it classifies the thread,
// consults the knowledge, product and price agents, and drafts a reply.
package main

func main() {
	Execute()
}
