package cli

import (
	"context"
	"time"

	"github.com/vladislavdragonenkov/retail-oms/internal/domain"
)

func (m *Menu) reportsMenu(ctx context.Context) {
	m.printf("\n--- Reports ---\n")
	m.printf("1. Top products\n")
	m.printf("2. Customers by orders\n")
	m.printf("3. Top customers by revenue\n")
	m.printf("4. Revenue by category\n")
	m.printf("5. Orders by period\n")
	m.printf("6. Monthly sales\n")
	m.printf("7. Low stock\n")
	m.printf("8. Dashboard\n")
	choice, ok := m.prompt("Choose: ")
	if !ok {
		return
	}

	switch choice {
	case "1":
		top, err := m.reports.TopProducts(ctx, 10)
		if err != nil {
			m.fail(err)
			return
		}
		for _, entry := range top {
			m.printf("%-30s %5d unit(s)  revenue %s\n",
				entry.Name, entry.Units, formatMoney(entry.RevenueMinor))
		}
	case "2":
		activity, err := m.reports.CustomersByOrders(ctx)
		if err != nil {
			m.fail(err)
			return
		}
		for _, entry := range activity {
			m.printf("%-25s %3d order(s)  avg ticket %s\n",
				entry.Name, entry.Orders, formatMoney(entry.AvgTicketMinor))
		}
	case "3":
		top, err := m.reports.TopCustomersByRevenue(ctx, 10)
		if err != nil {
			m.fail(err)
			return
		}
		for _, entry := range top {
			m.printf("%-25s %s (%.1f%%)\n",
				entry.Name, formatMoney(entry.RevenueMinor), entry.SharePercent)
		}
	case "4":
		revenue, err := m.reports.RevenueByCategory(ctx)
		if err != nil {
			m.fail(err)
			return
		}
		for _, entry := range revenue {
			m.printf("%-25s %s (%.1f%%)\n",
				entry.Name, formatMoney(entry.RevenueMinor), entry.SharePercent)
		}
	case "5":
		from, ok := m.promptDate("From (YYYY-MM-DD): ")
		if !ok {
			return
		}
		to, ok := m.promptDate("To (YYYY-MM-DD): ")
		if !ok {
			return
		}
		// Верхняя граница включает весь день "To".
		report, err := m.reports.OrdersByPeriod(ctx, from, to.Add(24*time.Hour-time.Nanosecond))
		if err != nil {
			m.fail(err)
			return
		}
		for _, day := range report.Days {
			m.printf("%s  %3d order(s)  %s\n",
				day.Day.Format("2006-01-02"), day.Orders, formatMoney(day.RevenueMinor))
		}
		m.printf("Total: %d order(s), revenue %s, avg ticket %s\n",
			report.Orders, formatMoney(report.RevenueMinor), formatMoney(report.AvgTicketMinor))
	case "6":
		report, err := m.reports.MonthlySales(ctx)
		if err != nil {
			m.fail(err)
			return
		}
		for _, month := range report.Months {
			m.printf("%s  %3d order(s)  %4d unit(s)  revenue %-12s growth %+.1f%%  3m avg %s\n",
				month.Month.Format("2006-01"), month.Orders, month.Units,
				formatMoney(month.RevenueMinor), month.GrowthPercent,
				formatMoney(month.MovingAvgMinor))
		}
		if len(report.Months) > 0 {
			m.printf("Overall growth %+.1f%%, best %s, worst %s\n",
				report.TotalGrowthPercent,
				report.Best.Month.Format("2006-01"),
				report.Worst.Month.Format("2006-01"))
		}
	case "7":
		report, err := m.reports.LowStock(ctx)
		if err != nil {
			m.fail(err)
			return
		}
		if len(report.Items) == 0 {
			m.printf("All products are above the threshold of %d.\n", report.Threshold)
			return
		}
		for _, item := range report.Items {
			m.printf("%-30s stock %2d  restock %2d for %s\n",
				item.Name, item.Stock, item.RestockQty, formatMoney(item.RestockCostMinor))
		}
		m.printf("Restock everything for %s\n", formatMoney(report.TotalCostMinor))
	case "8":
		dash, err := m.reports.BuildDashboard(ctx)
		if err != nil {
			m.fail(err)
			return
		}
		m.printf("Orders: %d total, %.1f%% canceled\n", dash.Orders, dash.CancellationRate)
		for _, status := range domain.OrderStatuses {
			if count := dash.OrdersByStatus[status]; count > 0 {
				m.printf("  %-11s %d\n", status, count)
			}
		}
		m.printf("Stock: %d unit(s) worth %s across %d product(s)\n",
			dash.StockUnits, formatMoney(dash.StockValueMinor), dash.Products)
		m.printf("Customers: %d active, %d inactive\n",
			dash.ActiveCustomers, dash.InactiveCustomers)
		m.printf("Revenue, last 6 months: %s\n", formatMoney(dash.RevenueHalfYear))
	default:
		m.printf("Unknown option: %s\n", choice)
	}
}
