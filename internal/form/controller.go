package form

import (
	"context"
	"errors"

	"github.com/wrightpress/submission-limiter/internal/log"
	"github.com/wrightpress/submission-limiter/rate_limiter"
	"go.uber.org/zap"
)

// ErrRateLimited is returned when the submission limit is active for this
// client. Not a fault: the countdown display tells the user when to retry.
var ErrRateLimited = errors.New("submission limit reached")

// Sender delivers a validated submission to wherever contact requests go.
type Sender interface {
	Send(ctx context.Context, sub *Submission) error
}

// Controller runs the submit flow: validate, check the rate limit, deliver,
// and record the accepted submission so the limit counts it. A delivery
// failure never consumes a slot.
type Controller struct {
	limiter *rate_limiter.SubmissionLimiter
	sender  Sender
}

func NewController(limiter *rate_limiter.SubmissionLimiter, sender Sender) *Controller {
	return &Controller{limiter: limiter, sender: sender}
}

// Submit validates and delivers one submission. After every delivery
// attempt, success or not, the limit is re-checked and the countdown shown
// if it now holds; the submission that used the last slot flips the form to
// the limited state immediately rather than on the next attempt.
func (c *Controller) Submit(ctx context.Context, sub *Submission) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	if d := c.limiter.Evaluate(ctx); !d.Allowed() {
		c.limiter.PresentCountdown(d.ResetAt)
		return ErrRateLimited
	}

	err := c.sender.Send(ctx, sub)
	if err == nil {
		c.limiter.RecordAccepted(ctx)
	} else {
		log.Logger().Error("Failed to deliver submission",
			zap.String("submissionID", sub.ID), zap.Error(err))
	}

	if d := c.limiter.Evaluate(ctx); !d.Allowed() {
		c.limiter.PresentCountdown(d.ResetAt)
	}
	return err
}
