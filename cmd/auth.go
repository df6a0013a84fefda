package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/cineflix/internal/accounts"
	"github.com/desertthunder/cineflix/internal/models"
	"github.com/desertthunder/cineflix/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthSignup creates an account, locally or on a running server, and starts a session for it.
func (r *Runner) AuthSignup(ctx context.Context, cmd *cli.Command) error {
	if err := r.ready(ctx); err != nil {
		return err
	}

	var user *models.User
	var err error
	if cmd.Bool("remote") {
		user, err = r.client().Signup(ctx, cmd.String("email"), cmd.String("password"), cmd.String("name"))
	} else {
		user, err = r.accounts.Signup(ctx, accounts.SignupRequest{
			Email:    cmd.String("email"),
			Password: cmd.String("password"),
			Name:     cmd.String("name"),
		})
	}
	if err != nil {
		return err
	}

	r.session.SaveSession(user)
	return r.writePlain("✓ Account created, signed in as %s\n", user.Email)
}

// AuthLogin checks credentials and starts a session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.ready(ctx); err != nil {
		return err
	}

	var user *models.User
	var err error
	if cmd.Bool("remote") {
		user, err = r.client().Login(ctx, cmd.String("email"), cmd.String("password"))
	} else {
		user, err = r.accounts.Login(ctx, accounts.LoginRequest{
			Email:    cmd.String("email"),
			Password: cmd.String("password"),
		})
	}
	if err != nil {
		return err
	}

	r.session.SaveSession(user)
	r.writePlain("✓ Signed in as %s\n", user.Email)
	if !user.Subscription.Active() {
		r.writePlain("No active subscription. Run 'cineflix plans' to pick one.\n")
	}
	return nil
}

// AuthLogout ends the session. Favorites and continue watching are cleared with it.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.ready(ctx); err != nil {
		return err
	}

	if !r.session.IsAuthenticated() {
		return r.writePlain("Not signed in\n")
	}

	r.session.ClearSession()
	return r.writePlain("✓ Signed out\n")
}

type authStatus struct {
	Authenticated bool         `json:"authenticated"`
	User          *models.User `json:"user,omitempty"`
	ExpiresAt     string       `json:"expiresAt,omitempty"`
	Favorites     int          `json:"favorites"`
	Watching      int          `json:"continueWatching"`
}

// AuthStatus reports the signed-in viewer. Reading the status does not extend the session.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.ready(ctx); err != nil {
		return err
	}

	status := authStatus{Authenticated: r.session.IsAuthenticated()}
	if status.Authenticated {
		status.User, _ = r.session.GetUser()
		if deadline, ok := r.session.Deadline(); ok {
			status.ExpiresAt = models.Timestamp(deadline)
		}
		status.Favorites = r.favorites.Count()
		status.Watching = r.watching.Count()
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	if !status.Authenticated {
		return r.writePlain("Not signed in\n")
	}

	r.writePlainHeader("Session")
	r.writePlain("Email:      %s\n", status.User.Email)
	if status.User.Name != "" {
		r.writePlain("Name:       %s\n", status.User.Name)
	}
	if sub := status.User.Subscription; sub.Active() {
		r.writePlain("Plan:       %s (%s)\n", sub.PlanName, sub.PaymentMethod)
	} else {
		r.writePlain("Plan:       none\n")
	}
	if deadline, ok := r.session.Deadline(); ok {
		r.writePlain("Expires in: %s\n", deadline.Sub(r.now()).Round(time.Minute))
	}
	r.writePlain("Favorites:  %d\n", status.Favorites)
	r.writePlain("Watching:   %d\n", status.Watching)
	return nil
}

// AuthSubscribe puts the signed-in viewer on a plan and stores the subscription in the session.
func (r *Runner) AuthSubscribe(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	plan, err := resolvePlan(cmd.String("plan"))
	if err != nil {
		return err
	}

	user, _ := r.session.GetUser()
	method := cmd.String("payment")

	var sub *models.Subscription
	if cmd.Bool("remote") {
		updated, err := r.client().Subscribe(ctx, user.ID, plan.ID, method)
		if err != nil {
			return err
		}
		if sub = updated.Subscription; sub == nil {
			return fmt.Errorf("%w: response carried no subscription", shared.ErrAPIRequest)
		}
	} else {
		r.logger.Info("processing payment", "plan", plan.Slug, "method", method)
		res, err := r.accounts.Subscribe(ctx, accounts.SubscribeRequest{UserID: user.ID, PlanID: plan.ID, PaymentMethod: method})
		if err != nil {
			return err
		}
		sub = res.Subscription
	}

	if _, ok := r.session.UpdateUser(map[string]any{"subscription": sub}); !ok {
		return fmt.Errorf("%w: session ended during payment", shared.ErrNotAuthenticated)
	}
	return r.writePlain("✓ Subscribed to %s ($%.2f/month), transaction %s\n", plan.Name, plan.Price, sub.TransactionID)
}

// Plans lists the subscription plans.
func (r *Runner) Plans(ctx context.Context, cmd *cli.Command) error {
	plans := accounts.Plans()
	if cmd.Bool("json") {
		return r.writeJSON(plans, true)
	}

	r.writePlainHeader("Plans")
	for _, p := range plans {
		marker := ""
		if p.Popular {
			marker = " ★ most popular"
		}
		r.writePlain("%d. %-9s $%5.2f/month  %s%s\n", p.ID, p.Name, p.Price, p.Quality, marker)
		for _, f := range p.Features {
			r.writePlain("     • %s\n", f)
		}
	}
	return nil
}

// resolvePlan accepts a plan id or slug.
func resolvePlan(ref string) (models.Plan, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return accounts.PlanByID(id)
	}
	return accounts.PlanBySlug(ref)
}
