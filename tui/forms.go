package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"redbus-cli/model"
	"redbus-cli/store"
)

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Prompt = ""
	return in
}

func digitsOnly(s string) error {
	for _, r := range s {
		if r < '0' || r > '9' {
			return errors.New("digits only")
		}
	}
	return nil
}

// searchForm collects the search criteria. Field order: origin,
// destination, travel date, bus type.
type searchForm struct {
	origin      textinput.Model
	destination textinput.Model
	date        textinput.Model
	busTypeIdx  int
	focus       int
}

const searchFieldCount = 4

func newSearchForm(recent *store.RecentSearch) searchForm {
	f := searchForm{
		origin:      newInput("Origin", 64),
		destination: newInput("Destination", 64),
		date:        newInput("YYYY-MM-DD", 10),
	}
	// Travel date defaults to tomorrow.
	f.date.SetValue(time.Now().AddDate(0, 0, 1).Format(time.DateOnly))

	if recent != nil {
		f.origin.SetValue(recent.Origin)
		f.destination.SetValue(recent.Destination)
		for i, t := range model.BusTypes {
			if t == recent.BusType {
				f.busTypeIdx = i
				break
			}
		}
	}
	f.origin.Focus()
	return f
}

func (f *searchForm) inputs() []*textinput.Model {
	return []*textinput.Model{&f.origin, &f.destination, &f.date}
}

func (f *searchForm) focusCmd() tea.Cmd {
	var cmd tea.Cmd
	for i, in := range f.inputs() {
		if i == f.focus {
			cmd = in.Focus()
			continue
		}
		in.Blur()
	}
	return tea.Batch(cmd, textinput.Blink)
}

func (f *searchForm) focusNext() tea.Cmd {
	f.focus = (f.focus + 1) % searchFieldCount
	return f.focusCmd()
}

func (f *searchForm) focusPrev() tea.Cmd {
	f.focus = (f.focus - 1 + searchFieldCount) % searchFieldCount
	return f.focusCmd()
}

func (f searchForm) onBusType() bool {
	return f.focus == searchFieldCount-1
}

func (f *searchForm) cycleBusType(forward bool) {
	n := len(model.BusTypes)
	if forward {
		f.busTypeIdx = (f.busTypeIdx + 1) % n
	} else {
		f.busTypeIdx = (f.busTypeIdx - 1 + n) % n
	}
}

func (f searchForm) busType() string {
	return model.BusTypes[f.busTypeIdx]
}

func (f searchForm) request() (model.SearchRequest, error) {
	origin := strings.TrimSpace(f.origin.Value())
	destination := strings.TrimSpace(f.destination.Value())
	date := strings.TrimSpace(f.date.Value())

	if origin == "" || destination == "" {
		return model.SearchRequest{}, errors.New("origin and destination are required")
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return model.SearchRequest{}, errors.New("travel date must look like 2024-06-01")
	}
	return model.SearchRequest{
		Origin:      origin,
		Destination: destination,
		TravelDate:  date,
		BusType:     f.busType(),
	}, nil
}

func (f searchForm) Update(msg tea.Msg) (searchForm, tea.Cmd) {
	if f.focus >= len(f.inputs()) {
		return f, nil
	}
	var cmd tea.Cmd
	switch f.focus {
	case 0:
		f.origin, cmd = f.origin.Update(msg)
	case 1:
		f.destination, cmd = f.destination.Update(msg)
	case 2:
		f.date, cmd = f.date.Update(msg)
	}
	return f, cmd
}

type loginForm struct {
	username textinput.Model
	password textinput.Model
	focus    int
}

func newLoginForm() loginForm {
	f := loginForm{
		username: newInput("Username", 64),
		password: newInput("Password", 64),
	}
	f.password.EchoMode = textinput.EchoPassword
	f.password.EchoCharacter = '•'
	f.username.Focus()
	return f
}

func (f *loginForm) inputs() []*textinput.Model {
	return []*textinput.Model{&f.username, &f.password}
}

func (f *loginForm) focusCmd() tea.Cmd {
	var cmd tea.Cmd
	for i, in := range f.inputs() {
		if i == f.focus {
			cmd = in.Focus()
			continue
		}
		in.Blur()
	}
	return tea.Batch(cmd, textinput.Blink)
}

func (f *loginForm) focusNext() tea.Cmd {
	f.focus = (f.focus + 1) % len(f.inputs())
	return f.focusCmd()
}

func (f *loginForm) focusPrev() tea.Cmd {
	n := len(f.inputs())
	f.focus = (f.focus - 1 + n) % n
	return f.focusCmd()
}

func (f loginForm) request() (model.LoginRequest, error) {
	username := strings.TrimSpace(f.username.Value())
	if username == "" || f.password.Value() == "" {
		return model.LoginRequest{}, errors.New("username and password are required")
	}
	return model.LoginRequest{Username: username, Password: f.password.Value()}, nil
}

func (f loginForm) Update(msg tea.Msg) (loginForm, tea.Cmd) {
	var cmd tea.Cmd
	switch f.focus {
	case 0:
		f.username, cmd = f.username.Update(msg)
	case 1:
		f.password, cmd = f.password.Update(msg)
	}
	return f, cmd
}

// registerForm field order: username, email, password, first name, last
// name, phone.
type registerForm struct {
	fields []textinput.Model
	focus  int
}

var registerLabels = []string{"Username", "Email", "Password", "First Name", "Last Name", "Phone"}

func newRegisterForm() registerForm {
	fields := make([]textinput.Model, len(registerLabels))
	for i, label := range registerLabels {
		fields[i] = newInput(label, 64)
	}
	fields[2].EchoMode = textinput.EchoPassword
	fields[2].EchoCharacter = '•'
	fields[0].Focus()
	return registerForm{fields: fields}
}

func (f *registerForm) focusCmd() tea.Cmd {
	var cmd tea.Cmd
	for i := range f.fields {
		if i == f.focus {
			cmd = f.fields[i].Focus()
			continue
		}
		f.fields[i].Blur()
	}
	return tea.Batch(cmd, textinput.Blink)
}

func (f *registerForm) focusNext() tea.Cmd {
	f.focus = (f.focus + 1) % len(f.fields)
	return f.focusCmd()
}

func (f *registerForm) focusPrev() tea.Cmd {
	n := len(f.fields)
	f.focus = (f.focus - 1 + n) % n
	return f.focusCmd()
}

func (f registerForm) request() (model.RegisterRequest, error) {
	req := model.RegisterRequest{
		Username:  strings.TrimSpace(f.fields[0].Value()),
		Email:     strings.TrimSpace(f.fields[1].Value()),
		Password:  f.fields[2].Value(),
		FirstName: strings.TrimSpace(f.fields[3].Value()),
		LastName:  strings.TrimSpace(f.fields[4].Value()),
		Phone:     strings.TrimSpace(f.fields[5].Value()),
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return model.RegisterRequest{}, errors.New("username, email and password are required")
	}
	return req, nil
}

func (f registerForm) Update(msg tea.Msg) (registerForm, tea.Cmd) {
	if f.focus < 0 || f.focus >= len(f.fields) {
		return f, nil
	}
	var cmd tea.Cmd
	f.fields[f.focus], cmd = f.fields[f.focus].Update(msg)
	return f, cmd
}

// passengerForm holds the detail inputs for one selected seat. Three fields
// per seat: name, age, gender.
type passengerForm struct {
	seat   int
	name   textinput.Model
	age    textinput.Model
	gender int
}

func newPassengerForm(seat int) passengerForm {
	age := newInput("Age", 3)
	age.Validate = digitsOnly
	return passengerForm{
		seat:   seat,
		name:   newInput("Passenger Name", 64),
		age:    age,
		gender: -1,
	}
}

func passengerFieldCount(forms []passengerForm) int {
	return len(forms) * 3
}

func onGenderField(focus int) bool {
	return focus%3 == 2
}

func setPassengerFocus(forms []passengerForm, focus int) tea.Cmd {
	for i := range forms {
		forms[i].name.Blur()
		forms[i].age.Blur()
	}
	idx := focus / 3
	if idx < 0 || idx >= len(forms) {
		return nil
	}
	var cmd tea.Cmd
	switch focus % 3 {
	case 0:
		cmd = forms[idx].name.Focus()
	case 1:
		cmd = forms[idx].age.Focus()
	}
	return tea.Batch(cmd, textinput.Blink)
}

func cycleGender(forms []passengerForm, focus int, forward bool) {
	idx := focus / 3
	if idx < 0 || idx >= len(forms) {
		return
	}
	n := len(model.Genders)
	g := forms[idx].gender
	if forward {
		g = (g + 1) % n
	} else {
		if g <= 0 {
			g = n
		}
		g--
	}
	forms[idx].gender = g
}

func updatePassengerForms(forms []passengerForm, focus int, msg tea.Msg) ([]passengerForm, tea.Cmd) {
	idx := focus / 3
	if idx < 0 || idx >= len(forms) {
		return forms, nil
	}
	var cmd tea.Cmd
	switch focus % 3 {
	case 0:
		forms[idx].name, cmd = forms[idx].name.Update(msg)
	case 1:
		forms[idx].age, cmd = forms[idx].age.Update(msg)
	}
	return forms, cmd
}

// validatePassengers enumerates every missing field across all selected
// seats. An empty result means the details are complete.
func validatePassengers(forms []passengerForm) []string {
	var errs []string
	for _, f := range forms {
		if strings.TrimSpace(f.name.Value()) == "" {
			errs = append(errs, fmt.Sprintf("seat %d: passenger name is required", f.seat))
		}
		ageText := strings.TrimSpace(f.age.Value())
		if ageText == "" {
			errs = append(errs, fmt.Sprintf("seat %d: age is required", f.seat))
		} else if age, err := strconv.Atoi(ageText); err != nil || age <= 0 {
			errs = append(errs, fmt.Sprintf("seat %d: age must be a positive number", f.seat))
		}
		if f.gender < 0 || f.gender >= len(model.Genders) {
			errs = append(errs, fmt.Sprintf("seat %d: gender is required", f.seat))
		}
	}
	return errs
}

func passengerDetails(forms []passengerForm) []model.PassengerDetail {
	details := make([]model.PassengerDetail, 0, len(forms))
	for _, f := range forms {
		age, _ := strconv.Atoi(strings.TrimSpace(f.age.Value()))
		gender := ""
		if f.gender >= 0 && f.gender < len(model.Genders) {
			gender = model.Genders[f.gender]
		}
		details = append(details, model.PassengerDetail{
			SeatNumber:      f.seat,
			PassengerName:   strings.TrimSpace(f.name.Value()),
			PassengerAge:    age,
			PassengerGender: gender,
		})
	}
	return details
}
