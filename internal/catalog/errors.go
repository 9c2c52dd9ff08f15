package catalog

// SubmissionError carries the data API's rejection of a creation request.
// The operator-facing message embeds the server detail verbatim when the
// server supplied one.
type SubmissionError struct {
	Status int
	Detail string
}

func (e *SubmissionError) Error() string {
	msg := "Failed to create product."
	if e.Detail != "" {
		msg += " " + e.Detail
	}
	return msg
}
