package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/findash/internal/backtest/engine"
	"github.com/rxtech-lab/findash/internal/types"
	"github.com/rxtech-lab/findash/pkg/errors"
)

// Application states.
const (
	StateTickerInput = iota
	StateLoading
	StateViewSelect
	StateTableDisplay
)

// SeriesSource returns the daily closes of a ticker between two dates.
type SeriesSource interface {
	FetchSeries(ctx context.Context, ticker string, start, end time.Time) (types.PriceSeries, error)
}

// Model is the Bubble Tea model of the backtest dashboard.
type Model struct {
	state       int
	tickerInput textinput.Model
	viewList    list.Model
	dataTable   table.Model
	ticker      string
	view        ViewKind
	result      types.BacktestResult
	err         error
	width       int
	height      int

	source SeriesSource
	engine engine.Engine
	params types.StrategyParams
	start  time.Time
	end    time.Time
}

// NewModel creates a Model that backtests tickers from source over [start, end].
func NewModel(source SeriesSource, eng engine.Engine, params types.StrategyParams, start, end time.Time) Model {
	return Model{
		state:       StateTickerInput,
		tickerInput: NewTickerInput(),
		viewList:    NewViewList(),
		dataTable:   NewDataTable(),
		source:      source,
		engine:      eng,
		params:      params,
		start:       start,
		end:         end,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.state != StateTickerInput {
				return m, tea.Quit
			}
		case "esc":
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewList.SetSize(msg.Width, msg.Height-6)
		m.dataTable.SetWidth(msg.Width)
		m.dataTable.SetHeight(msg.Height - 8)
		return m, nil

	case BacktestDoneMsg:
		m.result = msg.Result
		m.err = nil
		m.state = StateViewSelect
		return m, nil

	case BacktestErrorMsg:
		m.err = msg.Err
		m.state = StateTickerInput
		m.tickerInput.Focus()
		return m, textinput.Blink
	}

	switch m.state {
	case StateTickerInput:
		return m.updateTickerInput(msg)
	case StateViewSelect:
		return m.updateViewSelect(msg)
	case StateTableDisplay:
		return m.updateTableDisplay(msg)
	}

	return m, nil
}

func (m Model) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateViewSelect:
		m.result = types.BacktestResult{}
		m.ticker = ""
		m.err = nil
		m.tickerInput.Reset()
		m.tickerInput.Focus()
		m.state = StateTickerInput
		return m, textinput.Blink
	case StateTableDisplay:
		m.state = StateViewSelect
	}

	return m, nil
}

func (m Model) updateTickerInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		ticker := ParseTicker(m.tickerInput.Value())
		if ticker == "" {
			m.err = errors.New(errors.ErrCodeInvalidParameter, "enter a single ticker symbol")
			return m, nil
		}

		m.ticker = ticker
		m.err = nil
		m.state = StateLoading
		m.tickerInput.Blur()

		return m, m.runBacktest(ticker)
	}

	var cmd tea.Cmd
	m.tickerInput, cmd = m.tickerInput.Update(msg)
	return m, cmd
}

func (m Model) updateViewSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if item, ok := m.viewList.SelectedItem().(listItem); ok {
			m.view = item.view
			m.dataTable = UpdateTable(m.dataTable, item.view, m.result)
			m.state = StateTableDisplay
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewList, cmd = m.viewList.Update(msg)
	return m, cmd
}

func (m Model) updateTableDisplay(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.dataTable, cmd = m.dataTable.Update(msg)
	return m, cmd
}

// runBacktest returns a command that fetches the ticker and runs the strategy on it.
func (m Model) runBacktest(ticker string) tea.Cmd {
	source, eng, params, start, end := m.source, m.engine, m.params, m.start, m.end

	return func() tea.Msg {
		ctx := context.Background()

		series, err := source.FetchSeries(ctx, ticker, start, end)
		if err != nil {
			return BacktestErrorMsg{Err: err}
		}

		result, err := eng.Run(ctx, series, params, engine.LifecycleCallbacks{})
		if err != nil {
			return BacktestErrorMsg{Err: err}
		}

		return BacktestDoneMsg{Result: result}
	}
}

func (m Model) summary() string {
	r := m.result.Report

	return fmt.Sprintf("Strategy %s | Buy & Hold %s | Max DD %s | Trades %d",
		FormatPercent(r.StrategyTotalReturn),
		FormatPercent(r.BuyHoldTotalReturn),
		FormatPercent(r.MaxDrawdown),
		r.TradeCount,
	)
}

func (m Model) period() string {
	return fmt.Sprintf("%s to %s", m.start.Format("2006-01-02"), m.end.Format("2006-01-02"))
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateTickerInput:
		s.WriteString(TitleStyle.Render("FinDash - Moving Average Crossover"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Enter a ticker to backtest from %s:\n\n", m.period()))
		s.WriteString(m.tickerInput.View())
		s.WriteString("\n\n")

		if m.err != nil {
			s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			s.WriteString("\n\n")
		}

		s.WriteString(HelpStyle.Render("Press Enter to run, ctrl+c to quit"))

	case StateLoading:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("Running backtest for %s", m.ticker)))
		s.WriteString("\n\n")
		s.WriteString("Fetching prices and computing indicators...\n")

	case StateViewSelect:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("%s (%s)", m.ticker, m.period())))
		s.WriteString("\n")
		s.WriteString(SummaryStyle.Render(m.summary()))
		s.WriteString("\n\n")
		s.WriteString(m.viewList.View())
		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("Press Enter to open, Esc for another ticker, q to quit"))

	case StateTableDisplay:
		s.WriteString(TitleStyle.Render(fmt.Sprintf("%s - %s", m.ticker, m.view)))
		s.WriteString("\n")
		s.WriteString(SummaryStyle.Render(m.summary()))
		s.WriteString("\n\n")

		if len(m.dataTable.Rows()) == 0 {
			s.WriteString("No rows for this view.\n")
		} else {
			s.WriteString(m.dataTable.View())
		}

		s.WriteString("\n")
		s.WriteString(HelpStyle.Render("q: quit | Esc: back to views"))
	}

	return s.String()
}
