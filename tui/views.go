package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"redbus-cli/model"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	faintStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	focusedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	seatFree       = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	seatPicked     = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("2"))
	seatCursorOn   = lipgloss.NewStyle().Reverse(true).Bold(true)
	statusPending  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	statusOK       = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	statusBad      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	statusNeutral  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	selectorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	referenceStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
)

func hint(text string) string {
	return faintStyle.Render(text)
}

func (m appModel) View() string {
	header := m.headerView()
	switch m.state {
	case stateSearch:
		return header + "\n\n" + m.searchView()
	case stateSearching, stateAuthing, stateBooking, statePaying,
		stateLoadingBookings, stateLoadingBuses, stateLoadingSample:
		return header + "\n\n" + m.loadingView()
	case stateResults:
		return header + "\n\n" + m.resultsView()
	case stateLogin:
		return header + "\n\n" + m.loginView()
	case stateRegister:
		return header + "\n\n" + m.registerView()
	case stateSeats:
		return header + "\n\n" + m.seatMapView()
	case statePassengers:
		return header + "\n\n" + m.passengersView()
	case statePayment:
		return header + "\n\n" + m.paymentView()
	case stateDone:
		return header + "\n\n" + m.doneView()
	case stateBookings:
		return header + "\n\n" + m.bookingsView()
	case stateTracking:
		return header + "\n\n" + m.trackingView()
	case stateTrackingDetail:
		return header + "\n\n" + m.trackingDetailView()
	default:
		return header
	}
}

func (m appModel) headerView() string {
	title := titleStyle.Render("RedBus CLI")

	var sub []string
	if m.user != nil {
		sub = append(sub, fmt.Sprintf("User: %s", m.user.FirstName))
	} else {
		sub = append(sub, "Anonymous")
	}
	if m.criteria.Origin != "" {
		sub = append(sub, fmt.Sprintf("Route: %s → %s on %s", m.criteria.Origin, m.criteria.Destination, m.criteria.TravelDate))
	}
	if m.selectedBus != nil &&
		(m.state == stateSeats || m.state == statePassengers || m.state == stateBooking ||
			m.state == statePayment || m.state == statePaying) {
		sub = append(sub, fmt.Sprintf("Bus: %s (%s)", m.selectedBus.BusNumber, m.selectedBus.OperatorName))
	}
	meta := strings.Join(sub, " • ")
	if meta != "" {
		meta = "\n" + faintStyle.Render(meta)
	}

	status := ""
	if m.statusMsg != "" {
		status = "\n" + errorStyle.Render(m.statusMsg)
	}

	return title + meta + status + "\n" + hint(m.hints())
}

func (m appModel) hints() string {
	base := "ctrl+c quit • esc back • ctrl+n new search • ctrl+b bookings • ctrl+t tracking"
	if m.user == nil {
		base += " • ctrl+l login"
	} else {
		base += " • ctrl+l logout"
	}
	switch m.state {
	case stateSearch:
		return base + " • tab next field • enter search"
	case stateResults:
		return base + " • enter select seats • / filter • 1/2/3 sort by departure/price/duration"
	case stateLogin:
		return base + " • tab next field • enter login • ctrl+r register instead"
	case stateRegister:
		return base + " • tab next field • enter create account • ctrl+r back to login"
	case stateSeats:
		return base + " • arrows move • space toggle seat • enter passenger details"
	case statePassengers:
		return base + " • tab next field • left/right pick gender • enter create booking"
	case statePayment:
		return base + " • left/right payment method • enter pay"
	case stateDone:
		return base + " • enter new search"
	case stateBookings:
		return base + " • x cancel pending • r refresh • / filter"
	case stateTracking:
		return base + " • enter track bus • r refresh"
	case stateTrackingDetail:
		return base + " • r refresh now"
	}
	return base
}

func (m appModel) loadingView() string {
	title := "Loading"
	switch m.state {
	case stateSearching:
		title = "Searching buses"
	case stateAuthing:
		title = "Signing in"
	case stateBooking:
		title = "Creating booking"
	case statePaying:
		title = "Processing payment"
	case stateLoadingBookings:
		title = "Loading bookings"
	case stateLoadingBuses:
		title = "Loading bus locations"
	case stateLoadingSample:
		title = "Loading tracking info"
	}
	return fmt.Sprintf("%s %s\n\n%s", m.spinner.View(), title, hint("Fetching data..."))
}

func fieldLine(label string, value string, focused bool) string {
	prefix := "  "
	rendered := labelStyle.Render(fmt.Sprintf("%-12s", label))
	if focused {
		prefix = focusedStyle.Render("> ")
	}
	return prefix + rendered + value
}

func (m appModel) searchView() string {
	f := m.searchForm
	busType := f.busType()
	if busType == "" {
		busType = "Any"
	}
	lines := []string{
		titleStyle.Render("Search Buses"),
		"",
		fieldLine("Origin", f.origin.View(), f.focus == 0),
		fieldLine("Destination", f.destination.View(), f.focus == 1),
		fieldLine("Date", f.date.View(), f.focus == 2),
		fieldLine("Bus Type", selector(busType, f.focus == 3), f.focus == 3),
	}
	return strings.Join(lines, "\n")
}

func selector(value string, focused bool) string {
	if focused {
		return selectorStyle.Render("◂ " + value + " ▸")
	}
	return value
}

func (m appModel) resultsView() string {
	if len(m.offers) == 0 {
		return "No buses found for your search criteria.\n\n" + hint("Press esc to adjust the search.")
	}
	return m.resultList.View()
}

func (m appModel) loginView() string {
	f := m.loginForm
	lines := []string{
		titleStyle.Render("Login"),
		"",
		fieldLine("Username", f.username.View(), f.focus == 0),
		fieldLine("Password", f.password.View(), f.focus == 1),
	}
	return strings.Join(lines, "\n")
}

func (m appModel) registerView() string {
	f := m.registerForm
	lines := []string{titleStyle.Render("Create Account"), ""}
	for i, field := range f.fields {
		lines = append(lines, fieldLine(registerLabels[i], field.View(), f.focus == i))
	}
	return strings.Join(lines, "\n")
}

// seatMapView renders the bus layout: four seats per row, numbered
// left-to-right, top-to-bottom, starting at 1, with an aisle gap in the
// middle.
func (m appModel) seatMapView() string {
	if m.selectedBus == nil {
		return "No bus selected."
	}
	total := m.selectedBus.TotalSeats

	var b strings.Builder
	b.WriteString(titleStyle.Render("Select Seats"))
	b.WriteString("\n\n")

	for seat := 1; seat <= total; seat++ {
		cell := fmt.Sprintf("[%2d]", seat)
		selected := m.isSeatSelected(seat)
		switch {
		case seat == m.seatCursor+1:
			cell = seatCursorOn.Render(cell)
		case selected:
			cell = seatPicked.Render(cell)
		default:
			cell = seatFree.Render(cell)
		}
		b.WriteString(cell)

		col := (seat-1)%seatsPerRow + 1
		switch {
		case seat == total || col == seatsPerRow:
			b.WriteString("\n")
		case col == seatsPerRow/2:
			b.WriteString("   ") // aisle
		default:
			b.WriteString(" ")
		}
	}

	b.WriteString("\n")
	b.WriteString(hint(fmt.Sprintf("Legend: %s available • %s selected • %s cursor",
		seatFree.Render("[ n]"), seatPicked.Render("[ n]"), seatCursorOn.Render("[ n]"))))
	b.WriteString("\n")
	if len(m.selectedSeats) == 0 {
		b.WriteString(hint("Select seats first"))
	} else {
		b.WriteString(fmt.Sprintf("Selected: %s (%d/%d)", joinSeats(m.selectedSeats), len(m.selectedSeats), maxSeatsPerBooking))
	}
	return b.String()
}

func (m appModel) isSeatSelected(seat int) bool {
	for _, s := range m.selectedSeats {
		if s == seat {
			return true
		}
	}
	return false
}

func joinSeats(seats []int) string {
	parts := make([]string, len(seats))
	for i, s := range seats {
		parts[i] = fmt.Sprintf("%d", s)
	}
	return strings.Join(parts, ", ")
}

func (m appModel) passengersView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Passenger Details"))
	b.WriteString("\n\n")

	for i, f := range m.passengers {
		gender := "select"
		if f.gender >= 0 && f.gender < len(model.Genders) {
			gender = model.Genders[f.gender]
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("Seat %d", f.seat)))
		b.WriteString("\n")
		b.WriteString(fieldLine("Name", f.name.View(), m.passengerFocus == i*3))
		b.WriteString("\n")
		b.WriteString(fieldLine("Age", f.age.View(), m.passengerFocus == i*3+1))
		b.WriteString("\n")
		b.WriteString(fieldLine("Gender", selector(gender, m.passengerFocus == i*3+2), m.passengerFocus == i*3+2))
		b.WriteString("\n\n")
	}

	if len(m.validationErrs) > 0 {
		for _, e := range m.validationErrs {
			b.WriteString(errorStyle.Render("• " + e))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m appModel) paymentView() string {
	if m.currentBooking == nil {
		return "No booking in progress."
	}
	booking := m.currentBooking
	lines := []string{
		titleStyle.Render("Payment"),
		"",
		fmt.Sprintf("Booking Reference: %s", referenceStyle.Render(booking.BookingReference)),
		fmt.Sprintf("Seats: %d", booking.TotalSeats),
		fmt.Sprintf("Amount: ₹%.2f", booking.TotalAmount),
		"",
		fieldLine("Method", selector(model.PaymentMethods[m.payMethodIdx], true), true),
	}
	return strings.Join(lines, "\n")
}

func (m appModel) doneView() string {
	if m.completed == nil {
		return "Done."
	}
	lines := []string{
		statusOK.Render(fmt.Sprintf("Payment %s!", m.completed.paymentStatus)),
		"",
		fmt.Sprintf("Booking Reference: %s", referenceStyle.Render(m.completed.reference)),
		fmt.Sprintf("Amount Paid: ₹%.2f", m.completed.amount),
		"",
		hint("Press enter to start a new search."),
	}
	return strings.Join(lines, "\n")
}

func (m appModel) bookingsView() string {
	if m.user == nil {
		return "Please login to view your bookings.\n\n" + hint("Press ctrl+l to login.")
	}
	if m.bookingsFailed {
		return "Could not load your bookings.\n\n" + hint("Press r to retry.")
	}
	if len(m.bookings) == 0 {
		return "No bookings found.\n\n" + hint("Press esc to go back.")
	}
	view := m.bookingList.View()
	if m.cancelArmed != 0 {
		view += "\n" + errorStyle.Render(fmt.Sprintf("Cancel booking #%d? (y/n)", m.cancelArmed))
	}
	return view
}

func (m appModel) trackingView() string {
	if len(m.trackingList.Items()) == 0 {
		return "No buses are currently being tracked.\n\n" + hint("Press r to refresh.")
	}
	return m.trackingList.View()
}

func (m appModel) trackingDetailView() string {
	if m.sample == nil {
		return "No tracking data."
	}
	s := m.sample
	speed := "N/A"
	if s.SpeedKmh != nil {
		speed = fmt.Sprintf("%.1f km/h", *s.SpeedKmh)
	}
	direction := "N/A"
	if s.DirectionDegrees != nil {
		direction = fmt.Sprintf("%.0f°", *s.DirectionDegrees)
	}
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Bus %s", s.BusNumber)),
		"",
		fmt.Sprintf("Last Updated: %s", s.Timestamp.Local().Format("2006-01-02 15:04:05")),
		fmt.Sprintf("Speed: %s", speed),
		fmt.Sprintf("Direction: %s", direction),
		fmt.Sprintf("Coordinates: %.6f, %.6f", s.Latitude, s.Longitude),
		"",
		hint(fmt.Sprintf("Refreshes every %s.", trackingRefreshTime)),
	}
	return strings.Join(lines, "\n")
}

type offerItem struct {
	offer model.BusOffer
}

func (o offerItem) Title() string {
	return fmt.Sprintf("%s - %s", o.offer.BusNumber, o.offer.OperatorName)
}

func (o offerItem) Description() string {
	parts := []string{
		o.offer.BusType,
		fmt.Sprintf("%s - %s (%s)", o.offer.DepartureTime, o.offer.ArrivalTime, o.offer.Duration),
		fmt.Sprintf("%d seats available", o.offer.AvailableSeats),
		fmt.Sprintf("₹%.2f", o.offer.Price),
	}
	if len(o.offer.Amenities) > 0 {
		parts = append(parts, strings.Join(o.offer.Amenities, ", "))
	}
	return strings.Join(parts, " • ")
}

func (o offerItem) FilterValue() string {
	return strings.ToLower(strings.Join([]string{
		o.offer.BusNumber, o.offer.OperatorName, o.offer.BusType,
	}, " "))
}

func buildOfferItems(offers []model.BusOffer) []list.Item {
	items := make([]list.Item, 0, len(offers))
	for _, offer := range offers {
		items = append(items, offerItem{offer: offer})
	}
	return items
}

type bookingItem struct {
	booking model.Booking
}

func (b bookingItem) Title() string {
	return fmt.Sprintf("%s • %s - %s", b.booking.BookingReference, b.booking.BusNumber, b.booking.OperatorName)
}

func (b bookingItem) Description() string {
	seats := make([]string, 0, len(b.booking.Passengers))
	for _, p := range b.booking.Passengers {
		seats = append(seats, fmt.Sprintf("Seat %d (%s)", p.SeatNumber, p.PassengerName))
	}
	parts := []string{
		fmt.Sprintf("%s → %s", b.booking.Origin, b.booking.Destination),
		b.booking.BookingDate,
		fmt.Sprintf("₹%.2f", b.booking.TotalAmount),
		statusLabel(b.booking.Status),
	}
	if len(seats) > 0 {
		parts = append(parts, strings.Join(seats, ", "))
	}
	if canCancel(b.booking) {
		parts = append(parts, "x cancel")
	}
	return strings.Join(parts, " • ")
}

func (b bookingItem) FilterValue() string {
	return strings.ToLower(strings.Join([]string{
		b.booking.BookingReference, b.booking.BusNumber, b.booking.OperatorName,
		b.booking.Origin, b.booking.Destination, b.booking.Status,
	}, " "))
}

func buildBookingItems(bookings []model.Booking) []list.Item {
	items := make([]list.Item, 0, len(bookings))
	for _, booking := range bookings {
		items = append(items, bookingItem{booking: booking})
	}
	return items
}

func statusLabel(status string) string {
	switch status {
	case model.BookingConfirmed:
		return statusOK.Render(status)
	case model.BookingPending:
		return statusPending.Render(status)
	case model.BookingCancelled:
		return statusBad.Render(status)
	case model.BookingCompleted:
		return statusNeutral.Render(status)
	default:
		return status
	}
}

type trackingItem struct {
	sample model.TrackingSample
}

func (t trackingItem) Title() string {
	return fmt.Sprintf("Bus %s", t.sample.BusNumber)
}

func (t trackingItem) Description() string {
	return fmt.Sprintf("Last seen %s", t.sample.Timestamp.Local().Format("15:04:05"))
}

func (t trackingItem) FilterValue() string {
	return strings.ToLower(t.sample.BusNumber)
}

func buildTrackingItems(buses []model.TrackingSample) []list.Item {
	items := make([]list.Item, 0, len(buses))
	for _, bus := range buses {
		items = append(items, trackingItem{sample: bus})
	}
	return items
}
