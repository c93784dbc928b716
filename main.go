package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"moviefinder/cmd"
	"moviefinder/internal/agent"
)

const maxDisplayRows = 50

var logger *slog.Logger

// setupLogger creates and configures the application logger
func setupLogger(logPath string) error {
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	handler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
	})

	logger = slog.New(handler)
	logger.Info("Application started", "version", "1.0")

	return nil
}

// renderMarkdown renders markdown content with glamour for terminal display
func renderMarkdown(content string, width int) (string, error) {
	const glamourGutter = 2
	const borderWidth = 4

	renderWidth := width - borderWidth - glamourGutter
	if renderWidth < 40 {
		renderWidth = 40
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(renderWidth),
	)
	if err != nil {
		return "", err
	}

	return renderer.Render(content)
}

// App bundles the pipeline components behind the cmd.AppInterface so the CLI
// commands, the TUI and the agent all share one code path.
type App struct {
	cfg          *Config
	store        *Store
	translator   *Translator
	service      *QueryService
	orchestrator *Orchestrator
}

func initApp(dbPath string) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}

	if logger == nil {
		if err := setupLogger(cfg.LogFile); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(cfg.DatabasePath); err != nil {
		return nil, fmt.Errorf("database file not found at %s", cfg.DatabasePath)
	}

	app := &App{
		cfg:   cfg,
		store: NewStore(cfg.DatabasePath, cfg.QueryTimeout),
	}

	// Translation and chat need the API key; raw queries and schema do not.
	if cfg.AnthropicAPIKey != "" {
		translator, err := NewTranslator(cfg)
		if err != nil {
			return nil, err
		}
		app.translator = translator
		app.service = NewQueryService(translator, app.store, cfg)

		orchestrator, err := NewOrchestrator(cfg, app.service, app.store)
		if err != nil {
			return nil, err
		}
		app.orchestrator = orchestrator
	}

	return app, nil
}

func (a *App) Ask(ctx context.Context, question string) (*cmd.AskData, error) {
	if a.service == nil {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}

	result, err := a.service.Ask(ctx, question)
	if err != nil {
		return nil, err
	}

	return &cmd.AskData{
		Question:    result.Question,
		SQLQuery:    result.SQLQuery,
		ColumnNames: result.ColumnNames,
		Results:     result.Results,
		RowCount:    result.RowCount,
	}, nil
}

func (a *App) Chat(ctx context.Context, message string) (*cmd.ChatData, error) {
	if a.orchestrator == nil {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}

	resp, err := a.orchestrator.Run(ctx, message)
	if err != nil {
		return nil, err
	}

	data := &cmd.ChatData{
		AIResponse: resp.AIResponse,
		ToolCalls:  len(resp.FunctionCalls),
		RequestID:  resp.RequestID,
	}
	if resp.ChartData != nil && resp.ChartData.Success {
		data.ChartText = RenderChartSeries(resp.ChartData.Chart, 70)
	}
	if raw, err := json.MarshalIndent(resp, "", "  "); err == nil {
		data.RawJSON = raw
	}

	return data, nil
}

func (a *App) Translate(ctx context.Context, question string) (*cmd.TranslateData, error) {
	if a.translator == nil {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}

	candidate, err := a.translator.GenerateSQL(ctx, question)
	if err != nil {
		return nil, err
	}

	return &cmd.TranslateData{
		SQL:           candidate.SQL,
		RepairWarning: candidate.RepairWarning,
	}, nil
}

func (a *App) RunSQL(ctx context.Context, sqlQuery string) (*cmd.QueryData, error) {
	sqlQuery = ExtractSQL(sqlQuery)
	if err := ValidateSQL(sqlQuery); err != nil {
		return nil, err
	}

	result, err := a.store.Execute(ctx, sqlQuery)
	if err != nil {
		return nil, err
	}

	return &cmd.QueryData{
		SQLQuery:    sqlQuery,
		ColumnNames: result.Columns,
		Results:     result.RowMaps(),
		RowCount:    result.RowCount(),
	}, nil
}

func (a *App) Tables() []string {
	return movieTables
}

func (a *App) TableSchema(ctx context.Context, table string) ([]cmd.ColumnData, error) {
	info, err := a.store.TableInfo(ctx, table)
	if err != nil {
		return nil, err
	}
	if info.RowCount() == 0 {
		return nil, fmt.Errorf("table %s not found", table)
	}

	columns := make([]cmd.ColumnData, 0, info.RowCount())
	for _, row := range info.RowMaps() {
		// PRAGMA table_info returns: cid, name, type, notnull, dflt_value, pk
		name, _ := row["name"].(string)
		colType, _ := row["type"].(string)
		columns = append(columns, cmd.ColumnData{
			Name:    name,
			Type:    colType,
			NotNull: pragmaFlag(row["notnull"]),
			PK:      pragmaFlag(row["pk"]),
		})
	}
	return columns, nil
}

func pragmaFlag(v any) bool {
	switch f := v.(type) {
	case int64:
		return f != 0
	case int:
		return f != 0
	case string:
		return f != "0" && f != ""
	default:
		return false
	}
}

type mode int

const (
	askMode mode = iota
	chatMode
)

type model struct {
	app           *App
	currentMode   mode
	input         textinput.Model
	viewport      viewport.Model
	lastSQL       string
	width         int
	height        int
	err           error
	loading       bool
	copied        bool
	viewportReady bool
}

type askDoneMsg struct {
	result *cmd.AskData
	err    error
}

type chatDoneMsg struct {
	result *cmd.ChatData
	err    error
}

func runAsk(app *App, question string) tea.Cmd {
	return func() tea.Msg {
		result, err := app.Ask(context.Background(), question)
		return askDoneMsg{result: result, err: err}
	}
}

func runChat(app *App, message string) tea.Cmd {
	return func() tea.Msg {
		result, err := app.Chat(context.Background(), message)
		return chatDoneMsg{result: result, err: err}
	}
}

func initialModel(app *App) model {
	ti := textinput.New()
	ti.Placeholder = "Ask about movies, shows, or people..."
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()

	return model{
		app:         app,
		currentMode: askMode,
		input:       ti,
		viewport:    vp,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 8
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 9
		m.viewportReady = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case tea.MouseMsg:
		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		return m, vpCmd

	case askDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			if logger != nil {
				logger.Error("Question failed", "error", msg.err, "question", m.input.Value())
			}
			return m, nil
		}
		m.err = nil
		m.lastSQL = msg.result.SQLQuery
		m.setViewportContent(askResultMarkdown(msg.result))
		return m, nil

	case chatDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			if logger != nil {
				logger.Error("Chat failed", "error", msg.err)
			}
			return m, nil
		}
		m.err = nil
		content := msg.result.AIResponse
		if rendered, err := renderMarkdown(content, m.viewport.Width); err == nil {
			content = rendered
		}
		if msg.result.ChartText != "" {
			content += "\n" + msg.result.ChartText + "\n"
		}
		m.viewport.SetContent(content)
		m.viewport.GotoTop()
		return m, nil
	}

	var cmds []tea.Cmd
	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)
	return m, tea.Batch(cmds...)
}

// setViewportContent renders markdown into the viewport, falling back to the
// raw text when glamour fails.
func (m *model) setViewportContent(markdown string) {
	content := markdown
	if rendered, err := renderMarkdown(markdown, m.viewport.Width); err == nil {
		content = rendered
	}
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

func (m model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.copied = false

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyEnter:
		question := strings.TrimSpace(m.input.Value())
		if question == "" || m.loading {
			return m, nil
		}
		m.loading = true
		m.err = nil
		if m.currentMode == chatMode {
			return m, runChat(m.app, question)
		}
		return m, runAsk(m.app, question)

	case tea.KeyCtrlT:
		if m.currentMode == askMode {
			m.currentMode = chatMode
		} else {
			m.currentMode = askMode
		}
		return m, nil

	case tea.KeyCtrlY:
		if m.lastSQL != "" {
			if err := clipboard.WriteAll(m.lastSQL); err == nil {
				m.copied = true
			}
		}
		return m, nil

	case tea.KeyTab:
		if m.input.Focused() {
			m.input.Blur()
		} else {
			m.input.Focus()
		}
		return m, textinput.Blink

	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown, tea.KeyHome, tea.KeyEnd:
		if !m.input.Focused() {
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	return m, inputCmd
}

func (m model) View() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("62")).
		MarginBottom(1)

	b.WriteString(headerStyle.Render("🎬 Movie Finder"))
	b.WriteString("\n\n")

	inputStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1)

	b.WriteString(inputStyle.Render(m.input.View()))
	b.WriteString("\n")

	modeText := "Ask (one question, one query)"
	if m.currentMode == chatMode {
		modeText = "Chat (assistant with search and chart tools)"
	}
	b.WriteString(fmt.Sprintf("Mode: %s (Ctrl+T to switch)\n", modeText))

	if m.loading {
		b.WriteString("Thinking...\n")
	}
	if m.err != nil {
		errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}
	if m.copied {
		okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
		b.WriteString(okStyle.Render("SQL copied to clipboard"))
		b.WriteString("\n")
	}

	b.WriteString(m.viewport.View())

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		MarginTop(1)

	help := "\nEnter: Ask | Ctrl+T: Mode | Ctrl+Y: Copy SQL | Tab: Focus | Esc/Ctrl+C: Quit"
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

// askResultMarkdown formats a query result as a markdown document with the
// generated SQL and a result table.
func askResultMarkdown(result *cmd.AskData) string {
	var b strings.Builder

	b.WriteString("## Generated SQL\n\n```sql\n")
	b.WriteString(result.SQLQuery)
	b.WriteString("\n```\n\n")
	fmt.Fprintf(&b, "## Results (%d rows)\n\n", result.RowCount)

	if result.RowCount == 0 {
		b.WriteString("_No rows matched._\n")
		return b.String()
	}

	b.WriteString("| " + strings.Join(result.ColumnNames, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(result.ColumnNames)) + "\n")

	shown := result.Results
	if len(shown) > maxDisplayRows {
		shown = shown[:maxDisplayRows]
	}
	for _, row := range shown {
		cells := make([]string, len(result.ColumnNames))
		for i, col := range result.ColumnNames {
			v := row[col]
			if v == nil {
				cells[i] = ""
			} else {
				cells[i] = strings.ReplaceAll(fmt.Sprint(v), "|", "\\|")
			}
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	if result.RowCount > maxDisplayRows {
		fmt.Fprintf(&b, "\n_Showing the first %d of %d rows._\n", maxDisplayRows, result.RowCount)
	}

	return b.String()
}

func launchTUI(dbPath string) {
	app, err := initApp(dbPath)
	if err != nil {
		cmd.HandleError(err, "Failed to initialize")
	}

	p := tea.NewProgram(initialModel(app), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		cmd.HandleError(err, "TUI crashed")
	}
}

func startServer(dbPath string, port int) error {
	app, err := initApp(dbPath)
	if err != nil {
		return err
	}

	return StartServer(ServerConfig{
		Port:         port,
		Store:        app.store,
		Service:      app.service,
		Orchestrator: app.orchestrator,
	})
}

func runAgent(ctx context.Context, dbPath, prompt string) error {
	app, err := initApp(dbPath)
	if err != nil {
		return err
	}

	start := time.Now()
	response, err := agent.GenerateResponse(ctx, prompt, app, agent.WithAPIKeyFromEnv())
	if err != nil {
		return err
	}
	if logger != nil {
		logger.Info("Agent run completed", "duration_ms", time.Since(start).Milliseconds())
	}

	fmt.Println(response)
	return nil
}

func main() {
	// Set up cmd package callbacks
	cmd.LaunchTUI = launchTUI
	cmd.InitApp = func(dbPath string) (cmd.AppInterface, error) { return initApp(dbPath) }
	cmd.StartServer = startServer
	cmd.RunAgent = runAgent

	// Execute the CLI
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
