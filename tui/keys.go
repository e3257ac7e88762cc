package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"redbus-cli/model"
)

func (m appModel) handleKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit, true

	case "esc":
		if listPtr := m.activeList(); listPtr != nil {
			if listPtr.SettingFilter() || listPtr.IsFiltered() {
				listPtr.ResetFilter()
				return m, nil, true
			}
		}
		return m.goBack()

	case "ctrl+n":
		if m.isLoadingState() {
			return m, nil, true
		}
		m.resetWorkflow()
		m.statusMsg = ""
		m.state = stateSearch
		return m, m.searchForm.focusCmd(), true

	case "ctrl+b":
		if m.isLoadingState() {
			return m, nil, true
		}
		return m.openBookings()

	case "ctrl+t":
		if m.isLoadingState() {
			return m, nil, true
		}
		m.statusMsg = ""
		m.state = stateLoadingBuses
		return m, tea.Batch(m.fetchActiveBusesCmd(), m.spinner.Tick), true

	case "ctrl+l":
		if m.isLoadingState() {
			return m, nil, true
		}
		if m.user != nil {
			m.logout()
			return m, m.searchForm.focusCmd(), true
		}
		if m.state == stateResults {
			m.loginReturn = stateResults
		} else {
			m.loginReturn = stateSearch
		}
		m.statusMsg = ""
		m.state = stateLogin
		return m, m.loginForm.focusCmd(), true

	case "ctrl+r":
		switch m.state {
		case stateLogin:
			m.statusMsg = ""
			m.state = stateRegister
			return m, m.registerForm.focusCmd(), true
		case stateRegister:
			m.statusMsg = ""
			m.state = stateLogin
			return m, m.loginForm.focusCmd(), true
		}
	}

	switch m.state {
	case stateSearch:
		return m.handleSearchKey(msg)
	case stateLogin:
		return m.handleLoginKey(msg)
	case stateRegister:
		return m.handleRegisterKey(msg)
	case stateResults:
		return m.handleResultsKey(msg)
	case stateSeats:
		return m.handleSeatsKey(msg)
	case statePassengers:
		return m.handlePassengersKey(msg)
	case statePayment:
		return m.handlePaymentKey(msg)
	case stateDone:
		if msg.Type == tea.KeyEnter {
			m.state = stateSearch
			m.completed = nil
			return m, m.searchForm.focusCmd(), true
		}
	case stateBookings:
		return m.handleBookingsKey(msg)
	case stateTracking:
		return m.handleTrackingKey(msg)
	case stateTrackingDetail:
		if msg.String() == "r" {
			return m, m.fetchTrackingCmd(m.trackedBusID), true
		}
	}
	return m, nil, false
}

func (m appModel) handleSearchKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "down":
		return m, m.searchForm.focusNext(), true
	case "shift+tab", "up":
		return m, m.searchForm.focusPrev(), true
	case "left", "right":
		if m.searchForm.onBusType() {
			m.searchForm.cycleBusType(msg.String() == "right")
			return m, nil, true
		}
	case "enter":
		return m.submitSearch()
	}
	return m, nil, false
}

func (m appModel) submitSearch() (appModel, tea.Cmd, bool) {
	req, err := m.searchForm.request()
	if err != nil {
		m.statusMsg = err.Error()
		return m, nil, true
	}
	m.resetWorkflow()
	m.criteria = req
	m.statusMsg = ""
	m.state = stateSearching
	return m, tea.Batch(m.searchCmd(req), m.spinner.Tick), true
}

func (m appModel) handleLoginKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "down":
		return m, m.loginForm.focusNext(), true
	case "shift+tab", "up":
		return m, m.loginForm.focusPrev(), true
	case "enter":
		req, err := m.loginForm.request()
		if err != nil {
			m.statusMsg = err.Error()
			return m, nil, true
		}
		m.statusMsg = ""
		m.state = stateAuthing
		return m, tea.Batch(m.loginCmd(req), m.spinner.Tick), true
	}
	return m, nil, false
}

func (m appModel) handleRegisterKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "down":
		return m, m.registerForm.focusNext(), true
	case "shift+tab", "up":
		return m, m.registerForm.focusPrev(), true
	case "enter":
		req, err := m.registerForm.request()
		if err != nil {
			m.statusMsg = err.Error()
			return m, nil, true
		}
		m.statusMsg = ""
		m.state = stateAuthing
		return m, tea.Batch(m.registerCmd(req), m.spinner.Tick), true
	}
	return m, nil, false
}

func (m appModel) handleResultsKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	if m.resultList.SettingFilter() {
		return m, nil, false
	}
	switch msg.String() {
	case "enter":
		item, ok := m.resultList.SelectedItem().(offerItem)
		if !ok {
			return m, nil, true
		}
		mm, cmd := m.selectOffer(item.offer)
		return mm, cmd, true
	case "1":
		return m.resortResults("departure")
	case "2":
		return m.resortResults("price")
	case "3":
		return m.resortResults("duration")
	}
	return m, nil, false
}

// resortResults re-issues the current search with a new server-side sort.
// Pressing the active sort key again flips the order.
func (m appModel) resortResults(key string) (appModel, tea.Cmd, bool) {
	if m.criteria.SortBy == key && m.criteria.SortOrder != "desc" {
		m.criteria.SortOrder = "desc"
	} else {
		m.criteria.SortBy = key
		m.criteria.SortOrder = "asc"
	}
	m.resetWorkflow()
	m.statusMsg = ""
	m.state = stateSearching
	return m, tea.Batch(m.searchCmd(m.criteria), m.spinner.Tick), true
}

func (m appModel) handleSeatsKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "left", "h":
		m.moveSeatCursor(-1)
		return m, nil, true
	case "right", "l":
		m.moveSeatCursor(1)
		return m, nil, true
	case "up", "k":
		m.moveSeatCursor(-seatsPerRow)
		return m, nil, true
	case "down", "j":
		m.moveSeatCursor(seatsPerRow)
		return m, nil, true
	case " ", "x":
		m.toggleSeat(m.seatCursor + 1)
		return m, nil, true
	case "enter":
		if len(m.selectedSeats) == 0 {
			m.statusMsg = "Please select at least one seat"
			return m, nil, true
		}
		m.syncPassengerForms()
		m.passengerFocus = 0
		m.validationErrs = nil
		m.statusMsg = ""
		m.state = statePassengers
		return m, setPassengerFocus(m.passengers, m.passengerFocus), true
	}
	return m, nil, true
}

func (m *appModel) moveSeatCursor(delta int) {
	if m.selectedBus == nil {
		return
	}
	next := m.seatCursor + delta
	if next < 0 || next >= m.selectedBus.TotalSeats {
		return
	}
	m.seatCursor = next
}

func (m appModel) handlePassengersKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	count := passengerFieldCount(m.passengers)
	switch msg.String() {
	case "tab", "down":
		if count > 0 {
			m.passengerFocus = (m.passengerFocus + 1) % count
		}
		return m, setPassengerFocus(m.passengers, m.passengerFocus), true
	case "shift+tab", "up":
		if count > 0 {
			m.passengerFocus = (m.passengerFocus - 1 + count) % count
		}
		return m, setPassengerFocus(m.passengers, m.passengerFocus), true
	case "left", "right", " ":
		if onGenderField(m.passengerFocus) {
			cycleGender(m.passengers, m.passengerFocus, msg.String() != "left")
			return m, nil, true
		}
		if msg.String() == " " {
			return m, nil, false
		}
	case "enter":
		return m.submitPassengers()
	}
	return m, nil, false
}

// submitPassengers is the guarded SeatsChosen -> PassengersFilled transition:
// every selected seat needs a name, an age, and a gender before anything is
// sent to the backend.
func (m appModel) submitPassengers() (appModel, tea.Cmd, bool) {
	errs := validatePassengers(m.passengers)
	if len(errs) > 0 {
		m.validationErrs = errs
		m.statusMsg = "Please fill all passenger details"
		return m, nil, true
	}
	m.validationErrs = nil
	m.statusMsg = ""
	m.state = stateBooking
	return m, tea.Batch(m.createBookingCmd(m.bookingRequest()), m.spinner.Tick), true
}

func (m appModel) handlePaymentKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "left", "h":
		m.payMethodIdx = (m.payMethodIdx - 1 + len(model.PaymentMethods)) % len(model.PaymentMethods)
		return m, nil, true
	case "right", "l", "tab":
		m.payMethodIdx = (m.payMethodIdx + 1) % len(model.PaymentMethods)
		return m, nil, true
	case "enter":
		if m.currentBooking == nil {
			return m, nil, true
		}
		req := model.PaymentRequest{
			BookingId:     m.currentBooking.Id,
			Amount:        m.currentBooking.TotalAmount,
			PaymentMethod: model.PaymentMethods[m.payMethodIdx],
		}
		m.statusMsg = ""
		m.state = statePaying
		return m, tea.Batch(m.createPaymentCmd(req), m.spinner.Tick), true
	}
	return m, nil, true
}

func (m appModel) handleBookingsKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	if m.bookingList.SettingFilter() {
		return m, nil, false
	}
	switch msg.String() {
	case "x":
		item, ok := m.bookingList.SelectedItem().(bookingItem)
		if !ok || !canCancel(item.booking) {
			return m, nil, true
		}
		m.cancelArmed = item.booking.Id
		return m, nil, true
	case "y":
		if m.cancelArmed != 0 {
			id := m.cancelArmed
			m.statusMsg = ""
			return m, m.cancelBookingCmd(id), true
		}
	case "n":
		if m.cancelArmed != 0 {
			m.cancelArmed = 0
			return m, nil, true
		}
	case "r":
		if m.user != nil {
			m.cancelArmed = 0
			m.state = stateLoadingBookings
			return m, tea.Batch(m.fetchBookingsCmd(), m.spinner.Tick), true
		}
	}
	return m, nil, false
}

func (m appModel) handleTrackingKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	if m.trackingList.SettingFilter() {
		return m, nil, false
	}
	switch msg.String() {
	case "enter":
		item, ok := m.trackingList.SelectedItem().(trackingItem)
		if !ok {
			return m, nil, true
		}
		m.trackedBusID = item.sample.BusId
		m.sample = nil
		m.statusMsg = ""
		m.state = stateLoadingSample
		return m, tea.Batch(m.fetchTrackingCmd(m.trackedBusID), m.spinner.Tick), true
	case "r":
		m.state = stateLoadingBuses
		return m, tea.Batch(m.fetchActiveBusesCmd(), m.spinner.Tick), true
	}
	return m, nil, false
}

func (m appModel) openBookings() (appModel, tea.Cmd, bool) {
	m.cancelArmed = 0
	m.statusMsg = ""
	if m.user == nil {
		m.bookings = nil
		m.bookingList.SetItems(nil)
		m.state = stateBookings
		return m, nil, true
	}
	m.state = stateLoadingBookings
	return m, tea.Batch(m.fetchBookingsCmd(), m.spinner.Tick), true
}

func (m appModel) goBack() (appModel, tea.Cmd, bool) {
	switch m.state {
	case stateResults:
		m.state = stateSearch
		return m, m.searchForm.focusCmd(), true
	case stateLogin, stateRegister:
		target := m.loginReturn
		m.loginReturn = stateSearch
		m.statusMsg = ""
		m.state = target
		if target == stateSearch {
			return m, m.searchForm.focusCmd(), true
		}
		return m, nil, true
	case stateSeats:
		m.state = stateResults
		return m, nil, true
	case statePassengers:
		m.validationErrs = nil
		m.state = stateSeats
		return m, nil, true
	case statePayment:
		if m.currentBooking != nil {
			m.statusMsg = "Booking " + m.currentBooking.BookingReference + " is awaiting payment"
		}
		m.state = stateResults
		return m, nil, true
	case stateDone:
		m.completed = nil
		m.state = stateSearch
		return m, m.searchForm.focusCmd(), true
	case stateBookings, stateTracking:
		m.cancelArmed = 0
		m.statusMsg = ""
		m.state = stateSearch
		return m, m.searchForm.focusCmd(), true
	case stateTrackingDetail:
		m.sample = nil
		m.trackedBusID = 0
		m.state = stateTracking
		return m, nil, true
	}
	// Loading states: the in-flight request is left to finish.
	return m, nil, true
}

func (m *appModel) activeList() *list.Model {
	switch m.state {
	case stateResults:
		return &m.resultList
	case stateBookings:
		return &m.bookingList
	case stateTracking:
		return &m.trackingList
	}
	return nil
}

func canCancel(b model.Booking) bool {
	return b.Status == model.BookingPending
}
