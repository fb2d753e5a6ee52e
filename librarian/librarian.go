// Package librarian drives the bot's poll cycle: fetch unread messages,
// mark them read, parse mentions, resolve them against the wiki, and reply.
package librarian

import (
	"context"
	"time"

	"github.com/yourgamermom/japari-librarian/page"
	"github.com/yourgamermom/japari-librarian/pkg/logging"
	"github.com/yourgamermom/japari-librarian/pkg/metrics"
	"github.com/yourgamermom/japari-librarian/reddit"
	"github.com/yourgamermom/japari-librarian/wiki"
)

// Options configures a Librarian.
type Options struct {
	// User is the bot's reddit handle, the mention target.
	User string

	// MessageLimit caps the messages fetched per cycle. Zero means all.
	MessageLimit int

	// Subreddits is the allow-list of subreddits to answer in. Empty means
	// all; direct messages always pass.
	Subreddits []string
}

// Librarian owns one bot account's poll cycle. It is single-threaded: one
// cycle runs at a time and owns the reddit session for its duration.
type Librarian struct {
	reddit  *reddit.Client
	wiki    *wiki.Client
	opts    Options
	logger  logging.Logger
	metrics *metrics.Metrics
}

// New creates a Librarian around the two API clients.
func New(redditClient *reddit.Client, wikiClient *wiki.Client, m *metrics.Metrics, logger logging.Logger, opts Options) *Librarian {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if m == nil {
		m = metrics.New()
	}

	return &Librarian{
		reddit:  redditClient,
		wiki:    wikiClient,
		opts:    opts,
		logger:  logger.With(logging.F("component", "librarian")),
		metrics: m,
	}
}

// Run polls in a loop until ctx is cancelled. One cycle runs immediately,
// then one per interval tick. Cycle errors are logged and the tick loop
// continues; the next cycle is the retry.
func (l *Librarian) Run(ctx context.Context, interval time.Duration) error {
	l.logger.Info("starting poll loop", logging.F("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := l.Cycle(ctx); err != nil {
			l.logger.Error("cycle failed", logging.Err(err))
			l.metrics.CyclesTotal.WithLabelValues("error").Inc()
		} else {
			l.metrics.CyclesTotal.WithLabelValues("ok").Inc()
		}
		l.metrics.RateBudget.Set(float64(l.reddit.Session().Remaining()))

		select {
		case <-ctx.Done():
			l.logger.Info("poll loop stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Cycle runs one fetch, resolve and reply pass. Messages are marked read
// right after the fetch, so a later failure leaves them read but unanswered;
// the next cycle never re-reads them. Any error aborts the rest of the
// cycle.
func (l *Librarian) Cycle(ctx context.Context) error {
	messages, err := l.reddit.GetUnread(ctx, l.opts.MessageLimit)
	if err != nil {
		l.metrics.APIErrors.WithLabelValues("reddit").Inc()
		return err
	}
	l.metrics.MessagesSeen.Add(float64(len(messages)))

	if err := l.reddit.MarkRead(ctx, messages); err != nil {
		l.metrics.APIErrors.WithLabelValues("reddit").Inc()
		return err
	}

	messages = FilterMessages(messages, l.opts.Subreddits)

	pairs, friends := FindFriends(messages, l.opts.User)
	if len(pairs) == 0 {
		l.logger.Debug("no mentions found", logging.F("messages", len(messages)))
		return nil
	}

	l.logger.Info("found mentions",
		logging.F("messages", len(pairs)),
		logging.F("friends", len(friends)))

	partials, err := l.wiki.PartialPages(ctx, friends)
	if err != nil {
		l.metrics.APIErrors.WithLabelValues("wiki").Inc()
		return err
	}

	images, err := l.wiki.ImageURLs(ctx, partials)
	if err != nil {
		l.metrics.APIErrors.WithLabelValues("wiki").Inc()
		return err
	}

	pages := page.Make(partials, images, friends)
	l.metrics.PagesResolved.Add(float64(len(pages)))

	replies := MakeReplies(pairs, pages)

	if err := l.reddit.Reply(ctx, replies); err != nil {
		l.metrics.APIErrors.WithLabelValues("reddit").Inc()
		return err
	}
	l.metrics.RepliesSent.Add(float64(len(replies)))

	l.logger.Info("cycle complete", logging.F("replies", len(replies)))

	return nil
}
