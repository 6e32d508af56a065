package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mail_admin/internal/client"
	"mail_admin/internal/logger"
	"mail_admin/internal/mailer"

	"golang.org/x/term"
)

func main() {
	var (
		serverURL = flag.String("server", "http://localhost:8080", "admin API base URL")
		email     = flag.String("email", os.Getenv("ADMIN_EMAIL"), "admin login email")
		file      = flag.String("file", "", "file with one recipient address per line")
		template  = flag.String("template", mailer.TemplateUserWelcome, "template name")
		role      = flag.String("role", "user", "role recorded for recipients without an account")
		timeout   = flag.Duration("timeout", 30*time.Second, "per-request timeout")
	)
	flag.Parse()

	log := logger.New("info", "console", os.Stderr)

	var recipients client.RecipientList
	for _, arg := range flag.Args() {
		recipients.Add(arg)
	}
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatal().Err(err).Str("file", *file).Msg("cannot open recipient file")
		}
		_, err = recipients.Load(f)
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Msg("cannot read recipient file")
		}
	}
	emails := recipients.Emails()
	if len(emails) == 0 {
		fmt.Fprintln(os.Stderr, "Add at least one email")
		os.Exit(2)
	}
	if *email == "" {
		fmt.Fprintln(os.Stderr, "-email is required")
		os.Exit(2)
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot read password")
		}
		password = string(raw)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := client.New(*serverURL, *timeout)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot create client")
	}
	if err := c.Login(ctx, *email, password); err != nil {
		log.Fatal().Err(err).Msg("login failed")
	}

	log.Info().Int("recipients", len(emails)).Str("template", *template).Msg("sending")
	result, err := client.BulkSend(ctx, c, emails, *template, *role)
	for _, o := range result.Outcomes {
		if o.Err != nil {
			log.Warn().Err(o.Err).Str("to", o.Email).Msg("not sent")
			continue
		}
		log.Info().Str("to", o.Email).Msg("sent")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("bulk send aborted")
	}
	log.Info().Int("failed", result.Failed()).Msg("Bulk dispatch " + result.Status)
}
