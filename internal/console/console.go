// Package console は標準入出力による対話型メニューを提供する。
// HTTP APIと同じauth.Service / booking.Serviceを呼び出す。
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hitoshi/ridebook/internal/model"
)

// AuthService はコンソールが必要とする認証サービスインターフェース。
type AuthService interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (*model.Session, *model.Account, error)
	Resolve(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, token string) error
}

// BookingService はコンソールが必要とする予約サービスインターフェース。
type BookingService interface {
	Book(ctx context.Context, ownerEmail, source, destination string, distanceKm float64) (*model.Booking, error)
	List(ctx context.Context, ownerEmail string) ([]*model.Booking, error)
}

// Console は1利用者向けのメニューループ。
// ログイン中は1つのセッショントークンのみを保持する。
type Console struct {
	reader   *bufio.Reader
	output   io.Writer
	auth     AuthService
	bookings BookingService

	token string
	name  string
}

// New はConsoleを生成する。
func New(input io.Reader, output io.Writer, auth AuthService, bookings BookingService) *Console {
	return &Console{
		reader:   bufio.NewReader(input),
		output:   output,
		auth:     auth,
		bookings: bookings,
	}
}

// Run はメニューループを開始する。
// Exitの選択または入力の終端で正常終了する。
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintln(c.output, "========= Welcome to Ridebook =========")

	for {
		var (
			done bool
			err  error
		)
		if c.token == "" {
			done, err = c.anonymousMenu(ctx)
		} else {
			done, err = c.authenticatedMenu(ctx)
		}

		if errors.Is(err, io.EOF) {
			fmt.Fprintln(c.output)
			return nil
		}
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (c *Console) anonymousMenu(ctx context.Context) (bool, error) {
	fmt.Fprintln(c.output, "\n1. Register")
	fmt.Fprintln(c.output, "2. Login")
	fmt.Fprintln(c.output, "3. Exit")

	choice, err := c.prompt("Choose an option: ")
	if err != nil {
		return false, err
	}

	switch strings.TrimSpace(choice) {
	case "1":
		return false, c.register(ctx)
	case "2":
		return false, c.login(ctx)
	case "3":
		fmt.Fprintln(c.output, "Thank you for using Ridebook!")
		return true, nil
	default:
		fmt.Fprintln(c.output, "Invalid option, please try again.")
		return false, nil
	}
}

func (c *Console) authenticatedMenu(ctx context.Context) (bool, error) {
	fmt.Fprintf(c.output, "\nLogged in as: %s\n", c.name)
	fmt.Fprintln(c.output, "1. Book a Ride")
	fmt.Fprintln(c.output, "2. View Current Bookings")
	fmt.Fprintln(c.output, "3. Logout")

	choice, err := c.prompt("Choose an option: ")
	if err != nil {
		return false, err
	}

	switch strings.TrimSpace(choice) {
	case "1":
		return false, c.book(ctx)
	case "2":
		return false, c.viewBookings(ctx)
	case "3":
		c.logout(ctx)
		return false, nil
	default:
		fmt.Fprintln(c.output, "Invalid option, please try again.")
		return false, nil
	}
}

func (c *Console) register(ctx context.Context) error {
	fmt.Fprintln(c.output, "\n-- User Registration --")
	name, err := c.prompt("Enter your name: ")
	if err != nil {
		return err
	}
	email, err := c.prompt("Enter your email: ")
	if err != nil {
		return err
	}
	password, err := c.prompt("Set your password: ")
	if err != nil {
		return err
	}

	if err := c.auth.Register(ctx, name, email, password); err != nil {
		c.printError(err)
		return nil
	}
	fmt.Fprintln(c.output, "User registered successfully! You can now login.")
	return nil
}

func (c *Console) login(ctx context.Context) error {
	fmt.Fprintln(c.output, "\n-- User Login --")
	email, err := c.prompt("Enter your email: ")
	if err != nil {
		return err
	}
	password, err := c.prompt("Enter your password: ")
	if err != nil {
		return err
	}

	session, account, err := c.auth.Login(ctx, email, password)
	if err != nil {
		c.printError(err)
		return nil
	}

	c.token = session.Token
	c.name = account.Name
	fmt.Fprintf(c.output, "Login successful! Welcome, %s.\n", account.Name)
	return nil
}

func (c *Console) book(ctx context.Context) error {
	fmt.Fprintln(c.output, "\n-- Book a Ride --")
	source, err := c.prompt("Enter pickup location: ")
	if err != nil {
		return err
	}
	destination, err := c.prompt("Enter destination location: ")
	if err != nil {
		return err
	}
	distInput, err := c.prompt("Enter distance in km (numeric): ")
	if err != nil {
		return err
	}

	distance, err := strconv.ParseFloat(strings.TrimSpace(distInput), 64)
	if err != nil {
		fmt.Fprintln(c.output, "Invalid distance format.")
		return nil
	}

	email, ok := c.currentEmail(ctx)
	if !ok {
		return nil
	}

	booking, err := c.bookings.Book(ctx, email, source, destination, distance)
	if err != nil {
		c.printError(err)
		return nil
	}
	fmt.Fprintf(c.output, "Ride booked successfully! Estimated fare: $%.2f\n", booking.Fare)
	return nil
}

func (c *Console) viewBookings(ctx context.Context) error {
	fmt.Fprintln(c.output, "\n-- Your Current Bookings --")

	email, ok := c.currentEmail(ctx)
	if !ok {
		return nil
	}

	bookings, err := c.bookings.List(ctx, email)
	if err != nil {
		c.printError(err)
		return nil
	}
	if len(bookings) == 0 {
		fmt.Fprintln(c.output, "No bookings found.")
		return nil
	}
	for _, b := range bookings {
		fmt.Fprintln(c.output, FormatBooking(b))
	}
	return nil
}

func (c *Console) logout(ctx context.Context) {
	if err := c.auth.Logout(ctx, c.token); err != nil {
		slog.Error("failed to logout", slog.String("error", err.Error()))
	}
	c.token = ""
	c.name = ""
	fmt.Fprintln(c.output, "Logged out successfully.")
}

// currentEmail は保持中のトークンからアカウントを解決する。
// セッションが無効になっていた場合は匿名状態に戻す。
func (c *Console) currentEmail(ctx context.Context) (string, bool) {
	email, err := c.auth.Resolve(ctx, c.token)
	if err != nil {
		c.printError(err)
		if errors.Is(err, model.ErrUnauthorized) {
			c.token = ""
			c.name = ""
		}
		return "", false
	}
	return email, true
}

// prompt はプロンプトを表示して1行読み込む。改行は取り除く。
// 最終行が改行で終わっていない場合もその内容を返す。
func (c *Console) prompt(label string) (string, error) {
	fmt.Fprint(c.output, label)

	line, err := c.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Console) printError(err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Code != model.ErrCodeInternal {
		fmt.Fprintln(c.output, apiErr.Message)
		return
	}
	slog.Error("console operation failed", slog.String("error", err.Error()))
	fmt.Fprintln(c.output, "Something went wrong. Please try again.")
}

// FormatBooking は予約1件をコンソール表示用の文字列に整形する。
func FormatBooking(b *model.Booking) string {
	return fmt.Sprintf("From %s to %s - Distance: %.2f km - Fare: $%.2f", b.Source, b.Destination, b.DistanceKm, b.Fare)
}
