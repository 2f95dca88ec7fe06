// Package cli реализует консольное меню. Весь ввод-вывод и разбор
// параметров живут здесь, сервисы получают уже готовые значения.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/retail-oms/internal/domain"
	"github.com/vladislavdragonenkov/retail-oms/internal/service/orders"
	"github.com/vladislavdragonenkov/retail-oms/internal/service/purge"
	"github.com/vladislavdragonenkov/retail-oms/internal/service/reports"
	"github.com/vladislavdragonenkov/retail-oms/internal/service/returns"
)

// Menu держит зависимости консольного интерфейса.
type Menu struct {
	storage  domain.Storage
	composer *orders.Composer
	returns  *returns.Processor
	purger   *purge.Purger
	reports  *reports.Service
	logger   *log.Entry

	in  *bufio.Scanner
	out io.Writer
}

// New создаёт меню поверх сервисов.
func New(
	storage domain.Storage,
	composer *orders.Composer,
	processor *returns.Processor,
	purger *purge.Purger,
	reportSvc *reports.Service,
	logger *log.Logger,
	in io.Reader,
	out io.Writer,
) *Menu {
	return &Menu{
		storage:  storage,
		composer: composer,
		returns:  processor,
		purger:   purger,
		reports:  reportSvc,
		logger:   logger.WithField("component", "cli"),
		in:       bufio.NewScanner(in),
		out:      out,
	}
}

// Run крутит главное меню до выхода пользователя или отмены контекста.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.printf("\n===== RETAIL ORDER MANAGEMENT =====\n")
		m.printf("1. Categories\n")
		m.printf("2. Products\n")
		m.printf("3. Customers\n")
		m.printf("4. Orders\n")
		m.printf("5. Returns\n")
		m.printf("6. Reports\n")
		m.printf("7. Maintenance\n")
		m.printf("0. Exit\n")

		choice, ok := m.prompt("Choose an option: ")
		if !ok {
			return nil
		}
		switch choice {
		case "1":
			m.categoriesMenu(ctx)
		case "2":
			m.productsMenu(ctx)
		case "3":
			m.customersMenu(ctx)
		case "4":
			m.ordersMenu(ctx)
		case "5":
			m.processReturn(ctx)
		case "6":
			m.reportsMenu(ctx)
		case "7":
			m.maintenanceMenu(ctx)
		case "0":
			m.printf("Bye!\n")
			return nil
		default:
			m.printf("Unknown option: %s\n", choice)
		}
	}
}

// prompt печатает приглашение и читает строку. false означает конец ввода.
func (m *Menu) prompt(label string) (string, bool) {
	m.printf("%s", label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}

// fail печатает человекочитаемое сообщение по виду ошибки.
func (m *Menu) fail(err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, domain.ErrInsufficientStock):
		m.printf("Not enough stock for this product.\n")
	case errors.Is(err, domain.ErrIllegalTransition):
		m.printf("This status change is not allowed.\n")
	case errors.Is(err, domain.ErrReturnWindowExpired):
		m.printf("The return window for this order has expired.\n")
	case errors.Is(err, domain.ErrAlreadyCancelled):
		m.printf("The order is already canceled.\n")
	case errors.Is(err, domain.ErrOrderDeclined):
		m.printf("Order was not confirmed, nothing was saved.\n")
	case errors.Is(err, domain.ErrEmailTaken):
		m.printf("This email is already registered.\n")
	case errors.Is(err, domain.ErrProductInUse):
		m.printf("The product is referenced by existing orders.\n")
	case errors.Is(err, domain.ErrInvalidCPF):
		m.printf("CPF must contain exactly 11 digits.\n")
	case domain.IsNotFound(err):
		m.printf("Not found: %v\n", err)
	default:
		m.logger.WithError(err).Error("operation failed")
		m.printf("Error: %v\n", err)
	}
}

func (m *Menu) confirm(label string) bool {
	answer, ok := m.prompt(label + " [y/N]: ")
	if !ok {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

func (m *Menu) promptInt32(label string) (int32, bool) {
	raw, ok := m.prompt(label)
	if !ok {
		return 0, false
	}
	value, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		m.printf("Invalid number: %s\n", raw)
		return 0, false
	}
	return int32(value), true
}

// promptMoney читает сумму вида 89.90 и возвращает её в минорных единицах.
func (m *Menu) promptMoney(label string) (int64, bool) {
	raw, ok := m.prompt(label)
	if !ok {
		return 0, false
	}
	value, err := parseMoney(raw)
	if err != nil {
		m.printf("Invalid amount: %s\n", raw)
		return 0, false
	}
	return value, true
}

func (m *Menu) promptDate(label string) (time.Time, bool) {
	raw, ok := m.prompt(label)
	if !ok {
		return time.Time{}, false
	}
	value, err := time.Parse("2006-01-02", raw)
	if err != nil {
		m.printf("Invalid date, expected YYYY-MM-DD: %s\n", raw)
		return time.Time{}, false
	}
	return value.UTC(), true
}

// parseMoney переводит десятичную сумму в минорные единицы без float.
func parseMoney(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty amount")
	}

	whole, frac, found := strings.Cut(raw, ".")
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	if !found {
		return units * 100, nil
	}

	switch len(frac) {
	case 1:
		frac += "0"
	case 2:
	default:
		return 0, fmt.Errorf("amount %q must have at most two decimal places", raw)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || cents < 0 {
		return 0, fmt.Errorf("parse cents of %q", raw)
	}
	if units < 0 {
		return units*100 - cents, nil
	}
	return units*100 + cents, nil
}

// formatMoney печатает минорные единицы как десятичную сумму.
func formatMoney(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
