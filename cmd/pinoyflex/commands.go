// ABOUTME: Subcommand implementations for the pinoyflex CLI
// ABOUTME: Each command reads the persisted session and calls one forum operation

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/pinoyflex/pinoyflex/internal/forum"
	"github.com/pinoyflex/pinoyflex/internal/store"
)

type app struct {
	svc *forum.Service
	in  io.Reader
	out io.Writer
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "init":
		return a.cmdInit(ctx)
	case "register":
		return a.cmdRegister(ctx, args)
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		return a.cmdLogout(ctx)
	case "whoami":
		return a.cmdWhoami(ctx)
	case "profile":
		return a.cmdProfile(ctx, args)
	case "posts":
		return a.cmdPosts(ctx, args)
	case "post":
		return a.cmdPost(ctx, args)
	case "edit-post":
		return a.cmdEditPost(ctx, args)
	case "delete-post":
		return a.cmdDeletePost(ctx, args)
	case "vote":
		return a.cmdVote(ctx, args)
	case "tags":
		return a.cmdTags(ctx)
	case "tag":
		return a.cmdTag(ctx, args)
	case "comments":
		return a.cmdComments(ctx, args)
	case "comment":
		return a.cmdComment(ctx, args)
	case "edit-comment":
		return a.cmdEditComment(ctx, args)
	case "delete-comment":
		return a.cmdDeleteComment(ctx, args)
	case "log":
		return a.cmdLog(ctx, args)
	case "logs":
		return a.cmdLogs(ctx)
	default:
		printUsage(a.out)
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func (a *app) session(ctx context.Context) (*store.Session, error) {
	sess, err := a.svc.Users.Session(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	return sess, nil
}

// readPassword takes the password from PINOYFLEX_PASSWORD, a terminal
// prompt with echo off, or the first line of stdin, in that order.
func (a *app) readPassword() (string, error) {
	if p := os.Getenv("PINOYFLEX_PASSWORD"); p != "" {
		return p, nil
	}

	if f, ok := a.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(a.out, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.out)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(a.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *app) cmdInit(ctx context.Context) error {
	if err := a.svc.Bootstrap(ctx); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintln(a.out, "✓ Sample data ready")
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: register <username>")
	}
	password, err := a.readPassword()
	if err != nil {
		return err
	}
	sess, err := a.svc.Register(ctx, args[0], password)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(a.out, "✓ Welcome, %s\n", sess.Username)
	return nil
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: login <username>")
	}
	password, err := a.readPassword()
	if err != nil {
		return err
	}
	sess, err := a.svc.Login(ctx, args[0], password)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(a.out, "✓ Logged in as %s\n", sess.Username)
	return nil
}

func (a *app) cmdLogout(ctx context.Context) error {
	if err := a.svc.Users.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *app) cmdWhoami(ctx context.Context) error {
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	if sess == nil {
		color.New(color.FgYellow).Fprintln(a.out, "Not logged in")
		return nil
	}
	fmt.Fprintf(a.out, "%s (%s)\n", sess.Username, sess.ID)
	return nil
}

func (a *app) cmdProfile(ctx context.Context, args []string) error {
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	if sess == nil {
		return forum.ErrNotLoggedIn
	}

	var upd store.ProfileUpdate
	for i := 0; i < len(args); i++ {
		if i+1 >= len(args) {
			return fmt.Errorf("usage: profile [--avatar URL] [--bio TEXT] [--username NAME]")
		}
		v := args[i+1]
		switch args[i] {
		case "--avatar":
			upd.Avatar = &v
		case "--bio":
			upd.Bio = &v
		case "--username":
			upd.Username = &v
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
		i++
	}

	var u store.User
	if upd == (store.ProfileUpdate{}) {
		u, err = a.svc.Users.Get(ctx, sess.Username)
	} else {
		u, err = a.svc.UpdateProfile(ctx, sess, upd)
	}
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	cyan.Fprintf(a.out, "%s\n", u.Username)
	fmt.Fprintf(a.out, "  ID:      %s\n", u.ID)
	fmt.Fprintf(a.out, "  Avatar:  %s\n", u.Avatar)
	if u.Bio != "" {
		fmt.Fprintf(a.out, "  Bio:     %s\n", u.Bio)
	}

	posts, err := a.svc.Posts.List(ctx)
	if err != nil {
		return err
	}
	owner := store.SessionFor(u)
	posts = slices.DeleteFunc(posts, func(p store.Post) bool { return !forum.CanModify(&owner, p) })
	fmt.Fprintf(a.out, "\nPosts (%d)\n", len(posts))
	a.printPosts(posts)
	return nil
}

func (a *app) cmdPosts(ctx context.Context, args []string) error {
	posts, err := a.svc.Posts.List(ctx)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		posts = slices.DeleteFunc(posts, func(p store.Post) bool { return p.Tag != args[0] })
	}
	a.printPosts(posts)
	return nil
}

func (a *app) printPosts(posts []store.Post) {
	if len(posts) == 0 {
		fmt.Fprintln(a.out, "No posts")
		return
	}

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	for _, p := range posts {
		cyan.Fprintf(a.out, "%+4d  ", p.Votes)
		fmt.Fprintf(a.out, "%s", truncate(p.Title, 60))
		gray.Fprintf(a.out, "  [%s]\n", p.Tag)
		gray.Fprintf(a.out, "      %s by %s, %s, %d comments\n",
			p.ID, p.Author, humanize.Time(p.CreatedAt.Time()), p.CommentCount)
	}
}

func (a *app) cmdPost(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: post <title> <tag> <body>")
	}
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	p, err := a.svc.CreatePost(ctx, sess, forum.PostDraft{
		Title: args[0],
		Tag:   args[1],
		Body:  strings.Join(args[2:], " "),
	})
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(a.out, "✓ Posted %s\n", p.ID)
	return nil
}

func (a *app) cmdEditPost(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: edit-post <id> <body>")
	}
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	p, err := a.svc.EditPost(ctx, sess, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(a.out, "✓ Edited %s\n", p.ID)
	return nil
}

func (a *app) cmdDeletePost(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: delete-post <id>")
	}
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	if err := a.svc.DeletePost(ctx, sess, args[0]); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(a.out, "✓ Deleted %s\n", args[0])
	return nil
}

func (a *app) cmdVote(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: vote <id> up|down")
	}
	var dir store.Direction
	switch args[1] {
	case "up":
		dir = store.Upvote
	case "down":
		dir = store.Downvote
	default:
		return fmt.Errorf("vote direction must be up or down, got %q", args[1])
	}

	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	p, err := a.svc.Vote(ctx, sess, args[0], dir)
	if err != nil {
		return err
	}

	state := "no vote"
	switch p.VoteByUser[sess.Username] {
	case 1:
		state = "upvoted"
	case -1:
		state = "downvoted"
	}
	fmt.Fprintf(a.out, "%s: %d votes (%s)\n", p.ID, p.Votes, state)
	return nil
}

func (a *app) cmdTags(ctx context.Context) error {
	tags, err := a.svc.Tags.List(ctx)
	if err != nil {
		return err
	}
	for _, t := range tags {
		fmt.Fprintln(a.out, t)
	}
	return nil
}

func (a *app) cmdTag(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: tag <name>")
	}
	tag, err := a.svc.Tags.AddCustom(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(a.out, "✓ Added tag %q\n", tag)
	return nil
}

func (a *app) cmdComments(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: comments <post-id>")
	}
	comments, err := a.svc.Comments.List(ctx, args[0])
	if err != nil {
		return err
	}
	if len(comments) == 0 {
		fmt.Fprintln(a.out, "No comments")
		return nil
	}

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	for _, c := range comments {
		cyan.Fprintf(a.out, "%s", c.Author)
		gray.Fprintf(a.out, "  %s, %s", c.ID, humanize.Time(c.CreatedAt.Time()))
		if !c.LastEdited.IsZero() {
			gray.Fprint(a.out, " (edited)")
		}
		fmt.Fprintf(a.out, "\n  %s\n", c.Body)
	}
	return nil
}

func (a *app) cmdComment(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: comment <post-id> <body>")
	}
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	c, err := a.svc.AddComment(ctx, sess, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(a.out, "✓ Commented %s\n", c.ID)
	return nil
}

func (a *app) cmdEditComment(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: edit-comment <post-id> <comment-id> <body>")
	}
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	c, err := a.svc.EditComment(ctx, sess, args[0], args[1], strings.Join(args[2:], " "))
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(a.out, "✓ Edited %s\n", c.ID)
	return nil
}

func (a *app) cmdDeleteComment(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: delete-comment <post-id> <comment-id>")
	}
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	if err := a.svc.DeleteComment(ctx, sess, args[0], args[1]); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(a.out, "✓ Deleted %s\n", args[1])
	return nil
}

func (a *app) cmdLog(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: log [YYYY-MM-DD] <note>")
	}
	var date string
	if looksLikeDate(args[0]) {
		date, args = args[0], args[1:]
	}

	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	if _, err := a.svc.LogWorkout(ctx, sess, date, strings.Join(args, " ")); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintln(a.out, "✓ Logged")
	return nil
}

func (a *app) cmdLogs(ctx context.Context) error {
	sess, err := a.session(ctx)
	if err != nil {
		return err
	}
	logs, err := a.svc.WorkoutLogs(ctx, sess)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		fmt.Fprintln(a.out, "No workouts logged")
		return nil
	}

	dates := make([]string, 0, len(logs))
	for d := range logs {
		dates = append(dates, d)
	}
	slices.Sort(dates)

	cyan := color.New(color.FgCyan)
	for _, d := range dates {
		cyan.Fprintf(a.out, "%s  ", d)
		fmt.Fprintln(a.out, logs[d])
	}
	return nil
}

func looksLikeDate(s string) bool {
	return len(s) == len(store.DateKeyLayout) && s[4] == '-' && s[7] == '-'
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
