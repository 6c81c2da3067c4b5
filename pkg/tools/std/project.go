// Инструмент анализа проектных файлов.
//
// Файл расписания лежит в объектном хранилище; инструмент скачивает
// его через s3storage и строит анализ. Разбор форматов MPP/XER — вне
// скоупа, извлечённые данные симулированы, но контур хранилища
// настоящий: недоступный bucket или отсутствующий ключ возвращаются
// как результат инструмента, не роняя цикл.

package std

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ilkoid/cotools-ai/pkg/s3storage"
	"github.com/ilkoid/cotools-ai/pkg/tools"
)

// supportedProjectFormats — форматы проектных файлов, которые понимает
// инструмент.
var supportedProjectFormats = []string{".mpp", ".mpx", ".xml", ".xer", ".p6xml"}

// ProjectFileTool анализирует файлы расписаний проектов.
//
// storage может быть nil — тогда инструмент работает в офлайн-режиме
// и анализирует file_path без обращения к хранилищу.
type ProjectFileTool struct {
	storage s3storage.ClientInterface
	now     func() time.Time
}

// ProjectFileOption — функциональная опция для NewProjectFileTool.
type ProjectFileOption func(*ProjectFileTool)

// WithClock подставляет источник времени (для тестов).
func WithClock(now func() time.Time) ProjectFileOption {
	return func(t *ProjectFileTool) {
		t.now = now
	}
}

// NewProjectFileTool создаёт инструмент с опциональным S3 клиентом.
func NewProjectFileTool(storage s3storage.ClientInterface, opts ...ProjectFileOption) *ProjectFileTool {
	t := &ProjectFileTool{
		storage: storage,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Definition возвращает описание инструмента.
func (t *ProjectFileTool) Definition() tools.Definition {
	return tools.Definition{
		Name:        "ProjectFileProcessor",
		Description: "Process and analyze project schedule files (MPP, XER, P6XML) for tasks, resources and critical path.",
	}
}

// Execute обрабатывает проектный файл.
//
// Параметры: {"file_path": string, "operation": string}.
// Операции: "tasks", "resources", "analyze" (default).
func (t *ProjectFileTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	var args struct {
		FilePath  string `json:"file_path"`
		Operation string `json:"operation"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("invalid project file parameters: %w", err)
	}
	if args.FilePath == "" {
		return "", fmt.Errorf("project file processing requires a file_path")
	}

	dot := strings.LastIndex(args.FilePath, ".")
	ext := ""
	if dot >= 0 {
		ext = strings.ToLower(args.FilePath[dot:])
	}
	if !formatSupported(ext) {
		return fmt.Sprintf("Error: Unsupported file format %s. Supported formats are: %s",
			ext, strings.Join(supportedProjectFormats, ", ")), nil
	}

	// Скачиваем файл если хранилище подключено. Содержимое для
	// симулированного анализа не нужно, но недоступный файл должен
	// быть виден в transcript.
	if t.storage != nil {
		if _, err := t.storage.DownloadFile(ctx, args.FilePath); err != nil {
			return fmt.Sprintf("Error: File %s not found.", args.FilePath), nil
		}
	}

	switch args.Operation {
	case "tasks":
		return t.extractTasks(args.FilePath), nil
	case "resources":
		return t.extractResources(args.FilePath), nil
	case "", "analyze":
		return t.analyzeProject(args.FilePath), nil
	default:
		return "", fmt.Errorf("unknown project operation %q", args.Operation)
	}
}

func formatSupported(ext string) bool {
	for _, f := range supportedProjectFormats {
		if ext == f {
			return true
		}
	}
	return false
}

func (t *ProjectFileTool) extractTasks(filePath string) string {
	today := t.now()
	day := func(offset int) string {
		return today.AddDate(0, 0, offset).Format("2006-01-02")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tasks extracted from %s:\n", filePath)

	tasks := []struct {
		id           int
		name         string
		duration     string
		start, end   string
		resources    string
		predecessors string
	}{
		{1, "Project Initiation", "5d", day(1), day(5), "Project Manager, Business Analyst", ""},
		{2, "Requirements Analysis", "10d", day(6), day(15), "Business Analyst, Domain Expert", "1"},
		{3, "System Design", "15d", day(16), day(30), "Solution Architect, UI Designer", "2"},
	}
	for _, task := range tasks {
		fmt.Fprintf(&b, "\nTask ID: %d\n", task.id)
		fmt.Fprintf(&b, "Name: %s\n", task.name)
		fmt.Fprintf(&b, "Duration: %s\n", task.duration)
		fmt.Fprintf(&b, "Start: %s | End: %s\n", task.start, task.end)
		fmt.Fprintf(&b, "Resources: %s\n", task.resources)
		fmt.Fprintf(&b, "Predecessors: %s\n", task.predecessors)
	}
	return b.String()
}

func (t *ProjectFileTool) extractResources(filePath string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Resources extracted from %s:\n", filePath)

	resources := []struct {
		id   int
		name string
		role string
		cost string
	}{
		{1, "Project Manager", "Management", "$100/h"},
		{2, "Business Analyst", "Analysis", "$80/h"},
		{3, "Solution Architect", "Design", "$120/h"},
		{4, "UI Designer", "Design", "$90/h"},
		{5, "Domain Expert", "Analysis", "$95/h"},
	}
	for _, r := range resources {
		fmt.Fprintf(&b, "\nResource ID: %d\n", r.id)
		fmt.Fprintf(&b, "Name: %s\n", r.name)
		fmt.Fprintf(&b, "Role: %s\n", r.role)
		fmt.Fprintf(&b, "Cost: %s\n", r.cost)
	}
	return b.String()
}

func (t *ProjectFileTool) analyzeProject(filePath string) string {
	today := t.now()
	start := today.AddDate(0, 0, 1).Format("2006-01-02")
	end := today.AddDate(0, 0, 60).Format("2006-01-02")

	var b strings.Builder
	fmt.Fprintf(&b, "Project Analysis for %s:\n\n", filePath)
	fmt.Fprintf(&b, "Project Name: Sample Project\n")
	fmt.Fprintf(&b, "Duration: 60d (%s to %s)\n", start, end)
	fmt.Fprintf(&b, "Task Count: 32\n")
	fmt.Fprintf(&b, "Resource Count: 12\n")
	fmt.Fprintf(&b, "Critical Path: 45d\n")
	fmt.Fprintf(&b, "Total Estimated Cost: $125,000\n\n")

	b.WriteString("Identified Risks:\n")
	risks := []string{
		"Resource allocation conflicts in week 3",
		"Task dependencies may create bottlenecks",
		"Timeline constraints with external vendors",
	}
	for i, risk := range risks {
		fmt.Fprintf(&b, "%d. %s\n", i+1, risk)
	}

	b.WriteString("\nRecommendations:\n")
	recommendations := []string{
		"Consider adding buffer time to critical path tasks",
		"Review resource allocation for optimization",
		"Identify tasks that can be parallelized",
	}
	for i, rec := range recommendations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
	}
	return b.String()
}

// Compile-time проверка реализации интерфейса.
var _ tools.Tool = (*ProjectFileTool)(nil)
