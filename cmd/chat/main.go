package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Ahmadreza-Avandi/mami-land/internal/chat"
	"github.com/Ahmadreza-Avandi/mami-land/internal/ids"
	"github.com/Ahmadreza-Avandi/mami-land/internal/localstore"
	"github.com/Ahmadreza-Avandi/mami-land/internal/log"
	"github.com/Ahmadreza-Avandi/mami-land/internal/models"
	"github.com/Ahmadreza-Avandi/mami-land/internal/responder"
	"github.com/Ahmadreza-Avandi/mami-land/internal/security"
)

func main() {
	storePath := flag.String("store", "mamiland.json", "path to the local state file")
	newCode := flag.Bool("new-code", false, "mint a fresh access code and exit")
	codeTTL := flag.Duration("code-ttl", 24*time.Hour, "lifetime of minted access codes")
	flag.Parse()

	logger := log.New("development")

	store, err := localstore.Open(*storePath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}

	if *newCode {
		code, err := store.GenerateAccessCode(6, *codeTTL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "generate code: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(code.Code)
		return
	}

	stdin := bufio.NewScanner(os.Stdin)

	if !gate(store, stdin) {
		os.Exit(1)
	}

	ctx := context.Background()
	ctrl := chat.NewController(store, store, responder.NewLocalResponder(), logger)
	if err := ctrl.Resume(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "resume chat: %v\n", err)
		os.Exit(1)
	}

	for _, msg := range ctrl.Messages() {
		printMessage(msg)
	}

	fmt.Println("(/new شروع دوباره، /exit خروج)")

	for {
		fmt.Print("> ")
		if !stdin.Scan() {
			return
		}
		line := strings.TrimSpace(stdin.Text())

		switch line {
		case "":
			continue
		case "/exit":
			return
		case "/new":
			if err := ctrl.ClearChat(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "clear chat: %v\n", err)
				continue
			}
			for _, msg := range ctrl.Messages() {
				printMessage(msg)
			}
			continue
		}

		turn, err := ctrl.SendMessage(ctx, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "send: %v\n", err)
			continue
		}
		for _, msg := range turn {
			if msg.Role == models.RoleAssistant {
				printMessage(msg)
			}
		}
		if errText := ctrl.LastError(); errText != "" {
			fmt.Println(errText)
			ctrl.ClearError()
		}
	}
}

// gate enforces the access-code check for first-time users, then signs the
// user in against the local registry. A previously authenticated state skips
// both prompts.
func gate(store *localstore.Store, stdin *bufio.Scanner) bool {
	if store.AuthState().IsAuthenticated {
		return true
	}

	code, ok := promptAccessCode(store, stdin)
	if !ok {
		return false
	}

	user, ok := promptAccount(store, stdin)
	if !ok {
		return false
	}

	if err := store.SaveAuthState(localstore.AuthState{
		IsAuthenticated: true,
		User:            &user,
		AccessCode:      code,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "save auth state: %v\n", err)
		return false
	}
	return true
}

func promptAccessCode(store *localstore.Store, stdin *bufio.Scanner) (string, bool) {
	for attempts := 0; attempts < 3; attempts++ {
		fmt.Print("کد دسترسی را وارد کنید: ")
		if !stdin.Scan() {
			return "", false
		}
		code := strings.TrimSpace(stdin.Text())
		if code == "" {
			continue
		}

		if store.ConsumeAccessCode(code, "local") {
			return strings.ToUpper(code), true
		}
		fmt.Println("کد دسترسی نامعتبر است.")
	}
	return "", false
}

// promptAccount logs in a known email or registers a new account in the
// local user registry.
func promptAccount(store *localstore.Store, stdin *bufio.Scanner) (models.User, bool) {
	fmt.Print("ایمیل: ")
	if !stdin.Scan() {
		return models.User{}, false
	}
	email := strings.TrimSpace(strings.ToLower(stdin.Text()))
	if email == "" {
		return models.User{}, false
	}

	if existing, found := store.FindUserByEmail(email); found {
		for attempts := 0; attempts < 3; attempts++ {
			fmt.Print("رمز عبور: ")
			if !stdin.Scan() {
				return models.User{}, false
			}
			ok, err := security.VerifyPassword(stdin.Text(), existing.PasswordHash)
			if err == nil && ok {
				return existing, true
			}
			fmt.Println("رمز عبور نامعتبر است.")
		}
		return models.User{}, false
	}

	fmt.Print("نام کاربری: ")
	if !stdin.Scan() {
		return models.User{}, false
	}
	username := strings.TrimSpace(stdin.Text())
	if username == "" {
		return models.User{}, false
	}

	fmt.Print("رمز عبور (حداقل ۶ کاراکتر): ")
	if !stdin.Scan() {
		return models.User{}, false
	}
	password := stdin.Text()
	if len(password) < 6 {
		fmt.Println("رمز عبور باید حداقل ۶ کاراکتر باشد.")
		return models.User{}, false
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		return models.User{}, false
	}

	now := time.Now()
	user := models.User{
		ID:           ids.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.SaveUser(user); err != nil {
		fmt.Fprintf(os.Stderr, "save user: %v\n", err)
		return models.User{}, false
	}
	return user, true
}

func printMessage(msg models.ChatMessage) {
	prefix := "شما"
	if msg.Role == models.RoleAssistant {
		prefix = "مامی‌لند"
	}
	fmt.Printf("[%s] %s\n", prefix, msg.Content)
}
