package tui

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"redbus-cli/config"
	"redbus-cli/model"
	"redbus-cli/service"
	"redbus-cli/store"
)

const (
	maxSeatsPerBooking  = 6
	seatsPerRow         = 4
	trackingRefreshTime = 10 * time.Second
)

type appState int

const (
	stateSearch appState = iota
	stateSearching
	stateResults
	stateLogin
	stateRegister
	stateAuthing
	stateSeats
	statePassengers
	stateBooking
	statePayment
	statePaying
	stateDone
	stateLoadingBookings
	stateBookings
	stateLoadingBuses
	stateTracking
	stateLoadingSample
	stateTrackingDetail
)

type completion struct {
	reference     string
	paymentStatus string
	amount        float64
}

type appModel struct {
	client *service.Client
	logger *logrus.Logger

	state appState

	width  int
	height int

	user *model.User

	searchForm   searchForm
	loginForm    loginForm
	registerForm registerForm
	loginReturn  appState

	criteria   model.SearchRequest
	offers     []model.BusOffer
	resultList list.Model

	selectedBus   *model.BusOffer
	selectedSeats []int
	seatCursor    int

	passengers     []passengerForm
	passengerFocus int
	validationErrs []string

	currentBooking *model.Booking
	payMethodIdx   int
	completed      *completion

	bookings       []model.Booking
	bookingList    list.Model
	cancelArmed    int64
	bookingsFailed bool

	trackingList list.Model
	trackedBusID int64
	trackingGen  int
	sample       *model.TrackingSample

	spinner   spinner.Model
	statusMsg string
}

type sessionMsg struct {
	user  model.User
	token string
}

type sessionExpiredMsg struct{}

type authMsg struct {
	resp     model.AuthResponse
	err      error
	register bool
}

type searchMsg struct {
	offers []model.BusOffer
	err    error
}

type bookingCreatedMsg struct {
	booking model.Booking
	err     error
}

type bookingsMsg struct {
	bookings []model.Booking
	err      error
}

type bookingCancelledMsg struct {
	booking model.Booking
	err     error
}

type paymentMsg struct {
	payment model.Payment
	err     error
}

type activeBusesMsg struct {
	buses []model.TrackingSample
	err   error
}

type trackingMsg struct {
	sample model.TrackingSample
	err    error
}

type trackingTickMsg struct {
	gen int
}

func New(cfg config.Config, logger *logrus.Logger) tea.Model {
	var httpClient *http.Client
	if cfg.Timeout > 0 {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	client := service.NewClient(httpClient, cfg.APIBaseURL, logger)

	m := appModel{
		client: client,
		logger: logger,
		state:  stateSearch,
	}

	var recent *store.RecentSearch
	if searches, err := store.LoadRecentSearches(); err == nil && len(searches) > 0 {
		recent = &searches[0]
	}
	m.searchForm = newSearchForm(recent)
	m.loginForm = newLoginForm()
	m.registerForm = newRegisterForm()
	m.loginReturn = stateSearch

	m.resultList = newList("Search Results")
	m.bookingList = newList("My Bookings")
	m.trackingList = newList("Active Buses")

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp

	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.checkAuthCmd(), m.spinner.Tick, textinput.Blink)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		var handled bool
		m, cmd, handled = m.handleKey(msg)
		if handled {
			return m, cmd
		}
		return m.updateFocused(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.isLoadingState() {
			return m, cmd
		}
		return m, nil

	case sessionMsg:
		user := msg.user
		m.user = &user
		m.client.SetToken(msg.token)
		return m, nil

	case sessionExpiredMsg:
		// Only drop the stored token while still anonymous; a login that
		// completed in the meantime has already written a fresh one.
		if m.user == nil {
			_ = store.ClearToken()
		}
		return m, nil

	case authMsg:
		return m.applyAuth(msg)

	case searchMsg:
		if msg.err != nil {
			m.state = stateSearch
			m.statusMsg = "Failed to search buses: " + service.Message(msg.err)
			return m, nil
		}
		m.offers = msg.offers
		m.resultList.SetItems(buildOfferItems(msg.offers))
		m.resultList.ResetFilter()
		m.resultList.Select(0)
		m.state = stateResults
		m.statusMsg = ""
		return m, nil

	case bookingCreatedMsg:
		if msg.err != nil {
			m.state = statePassengers
			m.statusMsg = "Failed to create booking: " + service.Message(msg.err)
			return m, nil
		}
		booking := msg.booking
		m.currentBooking = &booking
		m.payMethodIdx = 0
		m.state = statePayment
		m.statusMsg = ""
		return m, nil

	case paymentMsg:
		if msg.err != nil {
			m.state = statePayment
			m.statusMsg = "Payment failed: " + service.Message(msg.err)
			return m, nil
		}
		done := completion{paymentStatus: msg.payment.PaymentStatus, amount: msg.payment.Amount}
		if m.currentBooking != nil {
			done.reference = m.currentBooking.BookingReference
		}
		m.completed = &done
		m.resetWorkflow()
		m.state = stateDone
		m.statusMsg = ""
		return m, nil

	case bookingsMsg:
		if msg.err != nil {
			m.bookings = nil
			m.bookingList.SetItems(nil)
			m.bookingsFailed = true
			m.state = stateBookings
			m.statusMsg = "Failed to load bookings: " + service.Message(msg.err)
			return m, nil
		}
		m.bookings = msg.bookings
		m.bookingList.SetItems(buildBookingItems(msg.bookings))
		m.bookingsFailed = false
		m.state = stateBookings
		return m, nil

	case bookingCancelledMsg:
		m.cancelArmed = 0
		if msg.err != nil {
			m.statusMsg = "Failed to cancel booking: " + service.Message(msg.err)
			return m, nil
		}
		m.statusMsg = "Booking cancelled successfully"
		m.state = stateLoadingBookings
		return m, tea.Batch(m.fetchBookingsCmd(), m.spinner.Tick)

	case activeBusesMsg:
		if msg.err != nil {
			m.trackingList.SetItems(nil)
			m.state = stateTracking
			m.statusMsg = "Failed to load bus locations: " + service.Message(msg.err)
			return m, nil
		}
		m.trackingList.SetItems(buildTrackingItems(msg.buses))
		m.state = stateTracking
		return m, nil

	case trackingMsg:
		if msg.err != nil {
			m.statusMsg = "Failed to load tracking info: " + service.Message(msg.err)
			if m.state == stateLoadingSample {
				m.state = stateTracking
			}
			return m, nil
		}
		sample := msg.sample
		m.sample = &sample
		if m.state == stateLoadingSample {
			// A fresh generation invalidates any tick chain left over from
			// an earlier visit to the detail screen.
			m.trackingGen++
			m.state = stateTrackingDetail
			return m, m.trackingTickCmd()
		}
		return m, nil

	case trackingTickMsg:
		if msg.gen != m.trackingGen {
			return m, nil
		}
		if m.state == stateTrackingDetail && m.trackedBusID != 0 {
			return m, tea.Batch(m.fetchTrackingCmd(m.trackedBusID), m.trackingTickCmd())
		}
		return m, nil
	}

	return m.updateFocused(msg)
}

// updateFocused routes a message to the component owning the current screen.
func (m appModel) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.state {
	case stateSearch:
		m.searchForm, cmd = m.searchForm.Update(msg)
	case stateLogin:
		m.loginForm, cmd = m.loginForm.Update(msg)
	case stateRegister:
		m.registerForm, cmd = m.registerForm.Update(msg)
	case statePassengers:
		m.passengers, cmd = updatePassengerForms(m.passengers, m.passengerFocus, msg)
	case stateResults:
		m.resultList, cmd = m.resultList.Update(msg)
	case stateBookings:
		m.bookingList, cmd = m.bookingList.Update(msg)
	case stateTracking:
		m.trackingList, cmd = m.trackingList.Update(msg)
	}
	return m, cmd
}

func (m *appModel) resetWorkflow() {
	m.selectedBus = nil
	m.selectedSeats = nil
	m.seatCursor = 0
	m.passengers = nil
	m.passengerFocus = 0
	m.validationErrs = nil
	m.currentBooking = nil
	m.payMethodIdx = 0
}

// toggleSeat adds or removes a seat from the selection. Adding past the cap
// is rejected with a message and no state change.
func (m *appModel) toggleSeat(seat int) {
	if m.selectedBus == nil || seat < 1 || seat > m.selectedBus.TotalSeats {
		return
	}
	for i, s := range m.selectedSeats {
		if s == seat {
			m.selectedSeats = append(m.selectedSeats[:i], m.selectedSeats[i+1:]...)
			m.syncPassengerForms()
			return
		}
	}
	if len(m.selectedSeats) >= maxSeatsPerBooking {
		m.statusMsg = "Maximum 6 seats can be selected"
		return
	}
	m.selectedSeats = append(m.selectedSeats, seat)
	m.statusMsg = ""
	m.syncPassengerForms()
}

// syncPassengerForms keeps one detail form per selected seat, in selection
// order, preserving values for seats that remain selected.
func (m *appModel) syncPassengerForms() {
	existing := make(map[int]passengerForm, len(m.passengers))
	for _, f := range m.passengers {
		existing[f.seat] = f
	}
	forms := make([]passengerForm, 0, len(m.selectedSeats))
	for _, seat := range m.selectedSeats {
		if f, ok := existing[seat]; ok {
			forms = append(forms, f)
			continue
		}
		forms = append(forms, newPassengerForm(seat))
	}
	m.passengers = forms
	if m.passengerFocus >= passengerFieldCount(m.passengers) {
		m.passengerFocus = 0
	}
}

// selectOffer is the guarded ResultsShown -> BusSelected transition. An
// anonymous user is sent to the login screen; the search results are kept.
func (m appModel) selectOffer(offer model.BusOffer) (appModel, tea.Cmd) {
	if m.user == nil {
		m.statusMsg = "Please login to book tickets"
		m.loginReturn = stateResults
		m.state = stateLogin
		return m, m.loginForm.focusCmd()
	}
	if m.selectedBus == nil || m.selectedBus.ScheduleId != offer.ScheduleId {
		m.resetWorkflow()
		m.selectedBus = &offer
	}
	m.state = stateSeats
	m.statusMsg = ""
	return m, nil
}

// bookingRequest builds the payload for POST /bookings. Passenger entries
// follow the seat selection order.
func (m appModel) bookingRequest() model.BookingRequest {
	req := model.BookingRequest{
		TravelDate: m.criteria.TravelDate,
		Passengers: passengerDetails(m.passengers),
	}
	if m.selectedBus != nil {
		req.ScheduleId = m.selectedBus.ScheduleId
	}
	return req
}

func (m appModel) applyAuth(msg authMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if msg.register {
			m.state = stateRegister
			m.statusMsg = "Registration failed: " + service.Message(msg.err)
		} else {
			m.state = stateLogin
			m.statusMsg = "Login failed: " + service.Message(msg.err)
		}
		return m, nil
	}

	user := msg.resp.User()
	m.user = &user
	m.client.SetToken(msg.resp.Token)
	_ = store.SaveToken(msg.resp.Token)

	m.loginForm = newLoginForm()
	m.registerForm = newRegisterForm()
	m.state = m.loginReturn
	m.loginReturn = stateSearch
	m.statusMsg = ""
	return m, nil
}

func (m *appModel) logout() {
	m.client.ClearToken()
	_ = store.ClearToken()
	m.user = nil
	m.resetWorkflow()
	m.state = stateSearch
	m.statusMsg = ""
}

func (m appModel) isLoadingState() bool {
	switch m.state {
	case stateSearching, stateAuthing, stateBooking, statePaying,
		stateLoadingBookings, stateLoadingBuses, stateLoadingSample:
		return true
	}
	return false
}

func (m *appModel) resizeLists() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 6
	if h < 6 {
		h = 6
	}
	m.resultList.SetSize(m.width, h)
	m.bookingList.SetSize(m.width, h)
	m.trackingList.SetSize(m.width, h)
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.Filter = caseInsensitiveFilter
	l.SetFilteringEnabled(true)
	l.SetShowFilter(true)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}

func caseInsensitiveFilter(term string, targets []string) []list.Rank {
	term = strings.ToLower(term)
	lower := make([]string, len(targets))
	for i, t := range targets {
		lower[i] = strings.ToLower(t)
	}
	return list.DefaultFilter(term, lower)
}

// checkAuthCmd validates the persisted token in the background. It never
// touches the client's stored credential: the token is applied in Update
// once the check succeeds, so a login racing the check cannot be clobbered.
func (m appModel) checkAuthCmd() tea.Cmd {
	return func() tea.Msg {
		token, err := store.LoadToken()
		if err != nil || strings.TrimSpace(token) == "" {
			return nil
		}
		user, err := m.client.MeWithToken(context.Background(), token)
		if err != nil {
			// Stale or invalid token: demote to anonymous, silently.
			return sessionExpiredMsg{}
		}
		return sessionMsg{user: user, token: token}
	}
}

func (m appModel) loginCmd(req model.LoginRequest) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.client.Login(context.Background(), req)
		return authMsg{resp: resp, err: err}
	}
}

func (m appModel) registerCmd(req model.RegisterRequest) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.client.Register(context.Background(), req)
		return authMsg{resp: resp, err: err, register: true}
	}
}

func (m appModel) searchCmd(req model.SearchRequest) tea.Cmd {
	return func() tea.Msg {
		offers, err := m.client.SearchBuses(context.Background(), req)
		if err == nil {
			_ = store.RememberSearch(store.RecentSearch{
				Origin:      req.Origin,
				Destination: req.Destination,
				BusType:     req.BusType,
			})
		}
		return searchMsg{offers: offers, err: err}
	}
}

func (m appModel) createBookingCmd(req model.BookingRequest) tea.Cmd {
	return func() tea.Msg {
		booking, err := m.client.CreateBooking(context.Background(), req)
		return bookingCreatedMsg{booking: booking, err: err}
	}
}

func (m appModel) createPaymentCmd(req model.PaymentRequest) tea.Cmd {
	return func() tea.Msg {
		payment, err := m.client.CreatePayment(context.Background(), req)
		return paymentMsg{payment: payment, err: err}
	}
}

func (m appModel) fetchBookingsCmd() tea.Cmd {
	return func() tea.Msg {
		bookings, err := m.client.ListBookings(context.Background())
		return bookingsMsg{bookings: bookings, err: err}
	}
}

func (m appModel) cancelBookingCmd(bookingID int64) tea.Cmd {
	return func() tea.Msg {
		booking, err := m.client.CancelBooking(context.Background(), bookingID)
		return bookingCancelledMsg{booking: booking, err: err}
	}
}

func (m appModel) fetchActiveBusesCmd() tea.Cmd {
	return func() tea.Msg {
		buses, err := m.client.ActiveBuses(context.Background())
		return activeBusesMsg{buses: buses, err: err}
	}
}

func (m appModel) fetchTrackingCmd(busID int64) tea.Cmd {
	return func() tea.Msg {
		sample, err := m.client.BusTracking(context.Background(), busID)
		return trackingMsg{sample: sample, err: err}
	}
}

func (m appModel) trackingTickCmd() tea.Cmd {
	gen := m.trackingGen
	return tea.Tick(trackingRefreshTime, func(time.Time) tea.Msg {
		return trackingTickMsg{gen: gen}
	})
}
