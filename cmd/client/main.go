/*
Package main is the interactive dmchat client.

It drives the register/login flow against the REST API, holds one long-lived
realtime connection acquired after login and released on logout, and renders
conversations through the reconciler: fetched history, live pushes, and the
user's own sends merged into a single view with unread markers.
*/
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"dmchat/internal/client/api"
	"dmchat/internal/client/session"
	"dmchat/internal/client/ws"
	"dmchat/internal/pkg/cipher"
)

func main() {
	serverURL := flag.String("server", envOr("DMCHAT_SERVER", "http://localhost:8080"), "server base URL")
	passphrase := flag.String("transit-key", os.Getenv("DMCHAT_TRANSIT_KEY"), "shared transit cipher passphrase")
	flag.Parse()

	if *passphrase == "" {
		fmt.Fprintln(os.Stderr, "transit cipher passphrase is required (flag -transit-key or DMCHAT_TRANSIT_KEY)")
		os.Exit(1)
	}

	transit, err := cipher.New(cipher.DeriveKey(*passphrase))
	if err != nil {
		fmt.Fprintf(os.Stderr, "cipher init: %v\n", err)
		os.Exit(1)
	}

	app := &app{
		api:     api.New(*serverURL),
		baseURL: *serverURL,
		transit: transit,
		stdin:   bufio.NewScanner(os.Stdin),
	}

	app.run()
}

type app struct {
	api     *api.Client
	baseURL string
	transit *cipher.Cipher

	self string
	conn *ws.Conn
	sess *session.Session

	stdin *bufio.Scanner
}

func (a *app) run() {
	fmt.Println("dmchat client. Commands: register, login, contacts, open <name>, say <text>, logout, quit")

	for {
		fmt.Print("> ")
		if !a.stdin.Scan() {
			return
		}

		line := strings.TrimSpace(a.stdin.Text())
		if line == "" {
			continue
		}

		command, arg, _ := strings.Cut(line, " ")

		switch command {
		case "register":
			a.register(arg)
		case "login":
			a.login(arg)
		case "contacts":
			a.contacts()
		case "open":
			a.open(strings.TrimSpace(arg))
		case "say":
			a.say(arg)
		case "logout":
			a.logout()
		case "quit", "exit":
			a.logout()
			return
		default:
			fmt.Println("unknown command:", command)
		}
	}
}

func (a *app) register(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("usage: register <name>")
		return
	}

	password, err := readPassword("password: ")
	if err != nil {
		fmt.Println("read password:", err)
		return
	}

	if err := a.api.Register(context.Background(), name, password); err != nil {
		fmt.Println("register failed:", err)
		return
	}

	fmt.Println("registered", name)
}

func (a *app) login(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("usage: login <name>")
		return
	}

	password, err := readPassword("password: ")
	if err != nil {
		fmt.Println("read password:", err)
		return
	}

	if err := a.signIn(name, password); err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("signed in as", name)
}

// signIn authenticates and wires up the realtime session. Any previous
// session is released first, so a re-login never leaks the old connection
// or its push consumer.
func (a *app) signIn(name, password string) error {
	a.logout()

	token, err := a.api.Login(context.Background(), name, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	conn, err := ws.Dial(context.Background(), a.baseURL)
	if err != nil {
		return fmt.Errorf("realtime connection failed: %w", err)
	}

	if err := conn.Join(token); err != nil {
		conn.Close()
		return fmt.Errorf("join failed: %w", err)
	}

	a.self = name
	a.conn = conn
	a.sess = session.New(name, a.api, conn, a.transit)

	go a.consumePushes(conn)

	return nil
}

// consumePushes applies live pushes in arrival order and surfaces unread
// notifications for conversations that are not on screen.
func (a *app) consumePushes(conn *ws.Conn) {
	for {
		select {
		case m, ok := <-conn.Pushes():
			if !ok {
				return
			}

			a.sess.HandleLivePush(m)

			if m.Sender == a.sess.Selected() {
				for _, e := range a.sess.Messages() {
					if e.ID == m.ID {
						printEntry(a.self, e)
					}
				}
			} else {
				fmt.Printf("\n* new message from %s\n> ", m.Sender)
			}

		case errPayload, ok := <-conn.Errors():
			if !ok {
				return
			}
			fmt.Printf("\n! server error %d: %s\n> ", errPayload.Code, errPayload.Message)
		}
	}
}

func (a *app) contacts() {
	if !a.signedIn() {
		return
	}

	contacts, err := a.api.Contacts(context.Background())
	if err != nil {
		a.reportAPIError("contacts", err)
		return
	}

	if len(contacts) == 0 {
		fmt.Println("no other users yet")
		return
	}

	for _, contact := range contacts {
		marker := ""
		if a.sess.HasUnread(contact.Name) {
			marker = " *"
		}
		fmt.Printf("  %s%s\n", contact.Name, marker)
	}
}

func (a *app) open(contact string) {
	if !a.signedIn() {
		return
	}
	if contact == "" {
		fmt.Println("usage: open <name>")
		return
	}

	if err := a.sess.SelectContact(context.Background(), contact); err != nil {
		a.reportAPIError("history", err)
		return
	}

	fmt.Println("--- conversation with", contact, "---")
	for _, e := range a.sess.Messages() {
		printEntry(a.self, e)
	}
}

func (a *app) say(text string) {
	if !a.signedIn() {
		return
	}
	if text == "" {
		fmt.Println("usage: say <text>")
		return
	}

	if err := a.sess.Send(text); err != nil {
		fmt.Println("send failed:", err)
	}
}

// logout releases the realtime connection and drops the session state.
func (a *app) logout() {
	if a.conn != nil {
		a.conn.Close()
		a.conn = nil
	}
	a.sess = nil
	a.self = ""
	a.api.SetToken("")
}

func (a *app) signedIn() bool {
	if a.sess == nil {
		fmt.Println("sign in first (login <name>)")
		return false
	}
	return true
}

// reportAPIError distinguishes auth failures, which require signing in
// again, from transient server failures that leave the session intact.
func (a *app) reportAPIError(operation string, err error) {
	if api.IsAuthFailure(err) {
		fmt.Println("session expired, please log in again")
		a.logout()
		return
	}
	fmt.Printf("%s failed: %v\n", operation, err)
}

func printEntry(self string, e session.Entry) {
	who := e.Sender
	if e.Sender == self {
		who = "me"
	}
	fmt.Printf("  [%s] %s: %s\n", e.Timestamp.Local().Format("Jan 2 15:04"), who, e.Text)
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
