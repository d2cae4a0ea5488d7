package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nverhaar/xlsxmerge/internal/merge"
	"github.com/nverhaar/xlsxmerge/internal/types"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type state int

const (
	stateFilePickerA state = iota
	stateFilePickerB
	stateConfig
	stateProcessing
	stateResults
	stateUnmatched
	stateError
)

const previewColumnWidth = 18

type Model struct {
	state        state
	filepicker   filepicker.Model
	fileA        string
	fileB        string
	inputs       []textinput.Model
	focusIndex   int
	result       *merge.Result
	resultTable  table.Model
	unmatched    table.Model
	savedPath    string
	err          error
	width        int
	height       int
	progress     progress.Model
	progressChan chan float64
	resultChan   chan mergeResultMsg
}

type mergeResultMsg struct {
	result *merge.Result
	err    error
}

type mergeCompleteMsg struct {
	result *merge.Result
	err    error
}

type progressMsg float64

type waitForProgressMsg struct{}

func InitialModel() Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".xlsx", ".xlsm"}
	fp.CurrentDirectory, _ = os.Getwd()

	// Set filepicker colors to match theme
	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(lipgloss.Color("#36A2EB"))
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(lipgloss.Color("#6FC3F7"))
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(lipgloss.Color("#6FC3F7"))
	fp.Styles.File = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(lipgloss.Color("#36A2EB")).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	defaults := merge.DefaultSpec()

	reference := textinput.New()
	reference.Prompt = "Reference Column: "
	reference.SetValue(defaults.ReferenceColumn)
	reference.CharLimit = 64
	reference.Focus()

	target := textinput.New()
	target.Prompt = "Column to Add:    "
	target.SetValue(defaults.TargetColumn)
	target.CharLimit = 64

	prog := progress.New(progress.WithGradient("#36A2EB", "#6FC3F7"))

	return Model{
		state:      stateFilePickerA,
		filepicker: fp,
		inputs:     []textinput.Model{reference, target},
		progress:   prog,
	}
}

func (m Model) Init() tea.Cmd {
	return m.filepicker.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Leave room for title, subtitle, help text, and padding
		height := msg.Height - 14
		if height < 5 {
			height = 5
		}
		m.filepicker.SetHeight(height)

		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateFilePickerA, stateFilePickerB:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			}

		case stateConfig:
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc":
				m.state = stateFilePickerB
				m.fileB = ""
				return m, nil
			case "tab", "shift+tab", "up", "down":
				if msg.String() == "tab" || msg.String() == "down" {
					m.focusIndex = (m.focusIndex + 1) % len(m.inputs)
				} else {
					m.focusIndex = (m.focusIndex + len(m.inputs) - 1) % len(m.inputs)
				}
				cmds := make([]tea.Cmd, 0, len(m.inputs))
				for i := range m.inputs {
					if i == m.focusIndex {
						cmds = append(cmds, m.inputs[i].Focus())
					} else {
						m.inputs[i].Blur()
					}
				}
				return m, tea.Batch(cmds...)
			case "enter":
				if m.spec().ReferenceColumn != "" && m.spec().TargetColumn != "" {
					m.state = stateProcessing
					return m.mergeFiles()
				}
			}

		case stateResults:
			switch msg.String() {
			case "ctrl+c", "q", "esc":
				return m, tea.Quit
			case "s":
				return m.saveOutput()
			case "u":
				if m.result.Stats.UnmatchedRows > 0 {
					m.state = stateUnmatched
					m.unmatched.Focus()
				}
				return m, nil
			}

		case stateUnmatched:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "esc", "u":
				m.state = stateResults
				m.resultTable.Focus()
				return m, nil
			}

		case stateError:
			switch msg.String() {
			case "ctrl+c", "q", "enter", "esc":
				return m, tea.Quit
			}
		}

	case mergeCompleteMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.result = msg.result
		m.result.FileA.Name = filepath.Base(m.fileA)
		m.result.FileB.Name = filepath.Base(m.fileB)
		m.resultTable = previewTable(m.result.Merged, m.tableHeight())
		m.resultTable.Focus()
		m.unmatched = previewTable(m.result.Unmatched, m.tableHeight())
		m.state = stateResults
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		if m.state == stateProcessing {
			cmd := m.progress.SetPercent(float64(msg))
			return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.resultChan))
		}
		return m, nil

	case waitForProgressMsg:
		return m, waitForProgress(m.progressChan, m.resultChan)
	}

	switch m.state {
	case stateFilePickerA, stateFilePickerB:
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			if m.state == stateFilePickerA {
				m.fileA = path
				m.state = stateFilePickerB
			} else {
				m.fileB = path
				m.state = stateConfig
			}
		}
		return m, cmd

	case stateConfig:
		var cmd tea.Cmd
		m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
		return m, cmd

	case stateResults:
		var cmd tea.Cmd
		m.resultTable, cmd = m.resultTable.Update(msg)
		return m, cmd

	case stateUnmatched:
		var cmd tea.Cmd
		m.unmatched, cmd = m.unmatched.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) spec() types.JoinSpec {
	return types.JoinSpec{
		ReferenceColumn: strings.TrimSpace(m.inputs[0].Value()),
		TargetColumn:    strings.TrimSpace(m.inputs[1].Value()),
	}
}

func (m Model) tableHeight() int {
	height := m.height - 16
	if height < 5 {
		height = 5
	}
	if height > 15 {
		height = 15
	}
	return height
}

func (m Model) mergeFiles() (Model, tea.Cmd) {
	m.progressChan = make(chan float64, 100)
	m.resultChan = make(chan mergeResultMsg, 1)

	cmd := tea.Batch(
		func() tea.Msg {
			// Capture for the goroutine
			progressChan := m.progressChan
			resultChan := m.resultChan
			fileA := m.fileA
			fileB := m.fileB
			spec := m.spec()

			go func() {
				var result *merge.Result

				rawA, err := os.ReadFile(fileA)
				if err == nil {
					var rawB []byte
					rawB, err = os.ReadFile(fileB)
					if err == nil {
						result, err = merge.Run(rawA, rawB, spec, progressChan)
					}
				}

				resultChan <- mergeResultMsg{result: result, err: err}

				close(progressChan)
				close(resultChan)
			}()

			return waitForProgressMsg{}
		},
		waitForProgress(m.progressChan, m.resultChan),
		m.progress.Init(),
	)

	return m, cmd
}

func (m Model) saveOutput() (Model, tea.Cmd) {
	path := filepath.Join(filepath.Dir(m.fileA), merge.OutputFileName)
	if err := os.WriteFile(path, m.result.Output, 0o644); err != nil {
		m.err = err
		m.state = stateError
		return m, nil
	}
	m.savedPath = path
	return m, nil
}

func waitForProgress(progressChan chan float64, resultChan chan mergeResultMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		p, ok := <-progressChan
		if !ok {
			// Progress channel closed, check result
			res, ok := <-resultChan
			if ok {
				return mergeCompleteMsg(res)
			}
			return nil
		}

		return progressMsg(p)
	}
}

// previewTable builds a scrollable table component from t.
func previewTable(t *merge.Table, height int) table.Model {
	columns := make([]table.Column, len(t.Columns))
	for i, c := range t.Columns {
		width := len(c)
		if width < 8 {
			width = 8
		}
		if width > previewColumnWidth {
			width = previewColumnWidth
		}
		columns[i] = table.Column{Title: c, Width: width}
	}

	rows := make([]table.Row, len(t.Rows))
	for i, row := range t.Rows {
		cells := make(table.Row, len(row))
		for j, v := range row {
			cells[j] = merge.CellString(v)
		}
		rows[i] = cells
	}

	tbl := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(height),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#36A2EB")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#36A2EB")).
		Bold(false)
	tbl.SetStyles(styles)

	return tbl
}

func (m Model) View() string {
	switch m.state {
	case stateFilePickerA, stateFilePickerB:
		return m.viewFilePicker()
	case stateConfig:
		return m.viewConfig()
	case stateProcessing:
		return m.viewProcessing()
	case stateResults:
		return m.viewResults()
	case stateUnmatched:
		return m.viewUnmatched()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("📊 Excel File Merger"))
	s.WriteString("\n")

	if m.state == stateFilePickerA {
		s.WriteString(SubtitleStyle.Render("Select File A: your handpicked/filtered file"))
	} else {
		s.WriteString(SuccessStyle.Render(fmt.Sprintf("File A: %s", filepath.Base(m.fileA))))
		s.WriteString("\n")
		s.WriteString(SubtitleStyle.Render("Select File B: the full data file with the columns to merge"))
	}
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press q to quit"))

	return s.String()
}

func (m Model) viewConfig() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("⚙ Configuration"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("File A: %s  •  File B: %s",
		filepath.Base(m.fileA), filepath.Base(m.fileB))))
	s.WriteString("\n\n")

	for i := range m.inputs {
		s.WriteString(m.inputs[i].View())
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("The reference column must exist in both files; the column to add comes from File B."))
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("tab: next field • enter: merge • esc: back • ctrl+c: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewProcessing() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("📊 Merging..."))
	s.WriteString("\n\n")
	s.WriteString("Joining File B into File A...")
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())

	return BoxStyle.Render(s.String())
}

func (m Model) viewResults() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("✓ Merge Results"))
	s.WriteString("\n\n")

	s.WriteString(fmt.Sprintf("File A: %s (%d rows, %d columns)\n",
		m.result.FileA.Name, m.result.FileA.Rows, m.result.FileA.Columns))
	s.WriteString(fmt.Sprintf("File B: %s (%d rows, %d columns)\n",
		m.result.FileB.Name, m.result.FileB.Rows, m.result.FileB.Columns))
	s.WriteString("\n")

	stats := m.result.Stats
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		StatStyle.Render(fmt.Sprintf("Total Rows\n%d", stats.TotalRows)),
		StatStyle.Render(fmt.Sprintf("Matched\n%d", stats.MatchedRows)),
		StatStyle.Render(fmt.Sprintf("Unmatched\n%d", stats.UnmatchedRows)),
	))
	s.WriteString("\n\n")
	s.WriteString(m.resultTable.View())
	s.WriteString("\n")

	if m.savedPath != "" {
		s.WriteString(SuccessStyle.Render(fmt.Sprintf("Saved to %s", m.savedPath)))
		s.WriteString("\n")
	}

	help := "↑/↓: scroll • s: save " + merge.OutputFileName + " • q: quit"
	if stats.UnmatchedRows > 0 {
		help = "↑/↓: scroll • s: save • u: view unmatched • q: quit"
	}
	s.WriteString(HelpStyle.Render(help))

	return BoxStyle.Render(s.String())
}

func (m Model) viewUnmatched() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render(fmt.Sprintf("⚠ %d Unmatched Records", m.result.Stats.UnmatchedRows)))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Rows from File A with no match in File B"))
	s.WriteString("\n\n")
	s.WriteString(m.unmatched.View())
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("↑/↓: scroll • esc: back • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	s.WriteString(m.err.Error())
	s.WriteString("\n\n")
	s.WriteString(SubtitleStyle.Render("Make sure both files are valid Excel files and contain the specified columns."))
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("Press any key to exit"))

	return BoxStyle.Render(s.String())
}
