package internal

// sampleSessions builds the synthetic seed set. The "sample" source
// scope puts the sample prefix on every id, which keeps them out of
// default reads.
func sampleSessions(b *Builder) []*Session {
	seeds := []struct {
		question string
		answer   string
		ageDays  int
	}{
		{
			question: "How do I optimize re-renders in a React component?",
			answer: "## Solution\n" +
				"- Wrap expensive children in React.memo\n" +
				"- Hoist callbacks with useCallback so props stay stable\n" +
				"- Split large state objects to limit invalidation\n",
			ageDays: 2,
		},
		{
			question: "Python script fails with ModuleNotFoundError inside the venv",
			answer: "## Fix\n" +
				"- Activate the venv before installing: source .venv/bin/activate\n" +
				"- pip install -r requirements.txt\n" +
				"- Check sys.path points at the venv site-packages\n",
			ageDays: 5,
		},
		{
			question: "Set up a multi-stage Dockerfile for a Go service",
			answer: "## Setup\n" +
				"- Build stage: golang:1.25 with CGO_ENABLED=0\n" +
				"- Final stage: copy the binary into a distroless image\n" +
				"- Install ca-certificates when the service dials TLS\n",
			ageDays: 9,
		},
	}

	now := b.now()
	sessions := make([]*Session, 0, len(seeds))
	for _, seed := range seeds {
		ts := now.AddDate(0, 0, -seed.ageDays).UnixMilli()
		session := b.FromRecords("sample", "", []RawRecord{
			{Text: seed.question, TimestampMillis: ts, Role: RoleUser},
			{Text: seed.answer, TimestampMillis: ts, Role: RoleAssistant},
		})
		if session != nil {
			sessions = append(sessions, session)
		}
	}
	return sessions
}
