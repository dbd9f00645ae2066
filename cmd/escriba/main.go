package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/samber/do/v2"
	"github.com/saluslab/escriba/external/api"
	"github.com/saluslab/escriba/external/archive"
	"github.com/saluslab/escriba/external/capture"
	configloader "github.com/saluslab/escriba/external/config"
	internalapi "github.com/saluslab/escriba/internal/api"
	"github.com/saluslab/escriba/internal/config"
	"github.com/saluslab/escriba/internal/session"
)

func main() {
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env)

	injector := setupDI(cfg)
	manager, err := do.Invoke[*session.Manager](injector)
	if err != nil {
		slog.Error("failed to resolve session manager", "error", err)
		os.Exit(1)
	}

	command, args := parseCommand(os.Args[1:])
	if err := run(cfg, manager, command, args); err != nil {
		if errors.Is(err, internalapi.ErrUnauthorized) {
			fmt.Fprintln(os.Stderr, "Sessão expirada. Faça login novamente.")
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	archive.RegisterDI(injector)
	api.RegisterDI(injector)
	capture.RegisterDI(injector)
	session.RegisterDI(injector)

	return injector
}

func parseCommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "record", nil
	}
	return args[0], args[1:]
}

func run(cfg *config.Config, manager *session.Manager, command string, args []string) error {
	ctx := context.Background()
	switch command {
	case "record":
		return runRecord(ctx, cfg, manager, strings.Join(args, " "))
	case "list":
		return runList(ctx, manager)
	case "show":
		return runShow(ctx, manager, args)
	case "structure":
		return runStructure(ctx, manager, args)
	case "delete":
		return runDelete(ctx, manager, args)
	case "export":
		return runExport(ctx, manager, args)
	default:
		return fmt.Errorf("comando desconhecido: %s (use record, list, show, structure, delete, export)", command)
	}
}

func runRecord(ctx context.Context, cfg *config.Config, manager *session.Manager, title string) error {
	decision, err := manager.RefreshGate(ctx)
	if err != nil {
		return err
	}
	if decision.Banner != "" {
		fmt.Println(decision.Banner)
	}
	if !decision.CanCreateNew {
		return fmt.Errorf("criação de novas gravações não permitida")
	}

	recordCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := manager.StartRecording(recordCtx); err != nil {
		return fmt.Errorf("erro ao acessar microfone, verifique as permissões: %w", err)
	}
	fmt.Println("Gravação iniciada. Pressione Ctrl+C para parar.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	signal.Stop(sigCh)

	elapsed := manager.StopRecording()
	fmt.Printf("Gravação finalizada (%02d:%02d).\n", elapsed/60, elapsed%60)

	fmt.Println("Transcrevendo áudio com IA... Isso pode levar alguns segundos.")
	rec, err := manager.Submit(ctx, title)
	if err != nil {
		return fmt.Errorf("erro ao fazer upload: %w", err)
	}
	fmt.Printf("Transcrição concluída! ID: %s\n", rec.ID)

	if cfg.AutoStructure {
		fmt.Println("Estruturando notas clínicas...")
		if _, err := manager.Structure(ctx, rec.ID); err != nil {
			// The transcript survives a failed structuring; the user can
			// retry with the structure command.
			fmt.Fprintf(os.Stderr, "Erro ao estruturar notas: %v\n", err)
			return nil
		}
		fmt.Println("Notas estruturadas com sucesso!")
	}
	return nil
}

func runList(ctx context.Context, manager *session.Manager) error {
	records, err := manager.List(ctx)
	if err != nil {
		return fmt.Errorf("erro ao carregar transcrições: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("Nenhuma transcrição encontrada.")
		return nil
	}
	for _, rec := range records {
		fmt.Printf("%s  %s  [%s]  %s\n", rec.ID, rec.CreatedAt.Format("02/01/2006 15:04"), rec.Status, rec.Title)
	}
	return nil
}

func runShow(ctx context.Context, manager *session.Manager, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("uso: escriba show <id>")
	}
	rec, err := manager.Show(ctx, args[0])
	if err != nil {
		return fmt.Errorf("erro ao carregar transcrição: %w", err)
	}
	if rec == nil {
		return fmt.Errorf("transcrição não encontrada: %s", args[0])
	}
	body, _, err := manager.Export(ctx, rec.ID)
	if err != nil {
		return err
	}
	fmt.Println(string(body))
	return nil
}

func runStructure(ctx context.Context, manager *session.Manager, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("uso: escriba structure <id>")
	}
	rec, err := manager.Structure(ctx, args[0])
	if err != nil {
		return fmt.Errorf("erro ao estruturar notas: %w", err)
	}
	fmt.Printf("Notas estruturadas com sucesso! (%s)\n", rec.ID)
	return nil
}

func runDelete(ctx context.Context, manager *session.Manager, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("uso: escriba delete <id>")
	}
	fmt.Printf("Tem certeza que deseja excluir a transcrição %s? [s/N] ", args[0])
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	if strings.TrimSpace(strings.ToLower(answer)) != "s" {
		fmt.Println("Exclusão cancelada.")
		return nil
	}
	if err := manager.Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("erro ao excluir transcrição: %w", err)
	}
	fmt.Println("Transcrição excluída.")
	return nil
}

func runExport(ctx context.Context, manager *session.Manager, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("uso: escriba export <id>")
	}
	body, filename, err := manager.Export(ctx, args[0])
	if err != nil {
		return fmt.Errorf("erro ao exportar transcrição: %w", err)
	}
	if err := os.WriteFile(filename, body, 0o644); err != nil {
		return err
	}
	fmt.Printf("Arquivo exportado: %s\n", filename)
	return nil
}
