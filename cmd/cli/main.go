package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Domenick1991/cabinseats/config"
	"github.com/Domenick1991/cabinseats/internal/domain"
	"github.com/Domenick1991/cabinseats/internal/layout"
	"github.com/Domenick1991/cabinseats/internal/repository"
	"github.com/Domenick1991/cabinseats/internal/service/registry"
	"github.com/Domenick1991/cabinseats/internal/service/seatmap"
	"github.com/Domenick1991/cabinseats/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := migrations.Apply(ctx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	seatRepo := repository.NewSeatRepository(pool)
	travelerRepo := repository.NewTravelerRepository(pool)
	seatService := seatmap.NewSeatMapService(seatRepo, nil)
	bookingService := registry.NewBookingService(
		seatService, seatRepo, travelerRepo, nil, nil, "", time.Second)

	if cfg.Layout.Path != "" {
		if err := loadLayout(ctx, cfg, seatService); err != nil {
			log.Fatalf("initialize seat map: %v", err)
		}
	}

	menu := &menu{
		in:       bufio.NewScanner(os.Stdin),
		seats:    seatService,
		bookings: bookingService,
	}
	menu.run(ctx)
}

func loadLayout(ctx context.Context, cfg *config.Config, seatService *seatmap.SeatMapService) error {
	rows, err := layout.ParseFile(cfg.Layout.Path)
	if err != nil {
		return err
	}
	categories, err := layout.TableFrom(cfg.Layout.Categories, cfg.Layout.DefaultCategory)
	if err != nil {
		return err
	}
	plan, err := layout.BuildPlan(rows, categories)
	if err != nil {
		return err
	}
	return seatService.Initialize(ctx, plan)
}

type menu struct {
	in       *bufio.Scanner
	seats    seatmap.SeatMapUseCase
	bookings registry.BookingUseCase
}

func (m *menu) run(ctx context.Context) {
	for {
		fmt.Println("\nMenu:")
		fmt.Println("1. Check seat availability")
		fmt.Println("2. Book a seat")
		fmt.Println("3. Free a seat")
		fmt.Println("4. Show booking status")
		fmt.Println("5. Exit")

		switch m.prompt("Select option: ") {
		case "1":
			m.checkAvailability(ctx)
		case "2":
			m.bookSeat(ctx)
		case "3":
			m.freeSeat(ctx)
		case "4":
			m.showStatus(ctx)
		case "5":
			fmt.Println("Goodbye!")
			return
		}

		if ctx.Err() != nil {
			return
		}
	}
}

func (m *menu) checkAvailability(ctx context.Context) {
	seatID := m.prompt("Enter seat number (e.g. A12): ")
	available, err := m.seats.IsAvailable(ctx, seatID)
	if err != nil {
		fmt.Println("Invalid seat number.")
		return
	}
	status := "booked"
	if available {
		status = "available"
	}
	fmt.Printf("Seat %s is %s.\n", seatmap.NormalizeSeatID(seatID), status)
}

func (m *menu) bookSeat(ctx context.Context) {
	fmt.Println("\nChoose seat type:")
	fmt.Println("1. Window")
	fmt.Println("2. Middle")
	fmt.Println("3. Aisle")

	categories := map[string]domain.SeatCategory{
		"1": domain.SeatCategoryWindow,
		"2": domain.SeatCategoryMiddle,
		"3": domain.SeatCategoryAisle,
	}
	category, ok := categories[m.prompt("Choice (1-3): ")]
	if !ok {
		fmt.Println("Invalid choice.")
		return
	}

	input := registry.BookingInput{
		Category: category,
		TravelerFields: registry.TravelerFields{
			PassportNumber: m.prompt("Passport number: "),
			FirstName:      m.prompt("First name: "),
			LastName:       m.prompt("Last name: "),
		},
	}

	result, err := m.bookings.Book(ctx, input)
	if err != nil {
		if errors.Is(err, domain.ErrNoSeatAvailable) {
			fmt.Println("No seats available in this category.")
			return
		}
		fmt.Printf("Booking failed: %v\n", err)
		return
	}
	fmt.Printf("Booked %s (%s) successfully. Reference: %s\n",
		result.Seat.SeatID, result.Seat.Category, result.Traveler.BookingReference)
}

func (m *menu) freeSeat(ctx context.Context) {
	reference := m.prompt("Enter booking reference: ")
	seat, err := m.bookings.Free(ctx, reference)
	if err != nil {
		fmt.Println("Invalid reference.")
		return
	}
	fmt.Printf("Freed seat %s.\n", seat.SeatID)
}

func (m *menu) showStatus(ctx context.Context) {
	grid, err := m.seats.StatusGrid(ctx)
	if err != nil {
		fmt.Printf("Status unavailable: %v\n", err)
		return
	}
	fmt.Println("\nBooking Status:")
	for _, row := range grid {
		fmt.Printf("%s: %s\n", row.Row, strings.Join(row.Cells, " "))
	}
}

func (m *menu) prompt(label string) string {
	fmt.Print(label)
	if !m.in.Scan() {
		return ""
	}
	return strings.TrimSpace(m.in.Text())
}
