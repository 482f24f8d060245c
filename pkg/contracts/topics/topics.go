package topics

const (
	// Tickets
	TicketIssued  = "ticket_issued"
	TicketSettled = "ticket_settled"

	// Draws
	DrawResultsPosted = "draw_results_posted"

	// DLQs
	TicketIssuedDLQ      = "ticket_issued_dlq"
	DrawResultsPostedDLQ = "draw_results_posted_dlq"
)
