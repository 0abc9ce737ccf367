package publish

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/akopylova/kabinet/internal/database"
	"github.com/akopylova/kabinet/internal/metrics"
	"github.com/akopylova/kabinet/internal/model"
)

// ErrDeployRunning is returned when a deploy is triggered while another
// one is still in progress.
var ErrDeployRunning = errors.New("deploy already running")

// Status is the observable state of the current (or last) deploy run.
type Status struct {
	Running bool
	Log     []string
	Result  string // "", "success" or "error"
}

// Deployer runs the export-commit-push workflow on a background goroutine
// and exposes its progress for polling. Only one run may be active at a
// time; there is no cancellation and no retry.
type Deployer struct {
	Exporter      *Exporter
	DB            *database.DB
	RepoDir       string
	Remote        string
	Branch        string
	ExportTimeout time.Duration
	PushTimeout   time.Duration

	mu     sync.Mutex
	status Status
}

// Status returns a copy of the current deploy state.
func (d *Deployer) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.status
	s.Log = append([]string(nil), d.status.Log...)
	return s
}

// Start kicks off a deploy run. It returns ErrDeployRunning if one is
// already in progress; the in-progress log is left untouched in that case.
func (d *Deployer) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.status.Running {
		return ErrDeployRunning
	}
	d.status = Status{Running: true, Log: []string{}}
	go d.run()
	return nil
}

func (d *Deployer) run() {
	id := uuid.NewString()
	started := time.Now()
	if d.DB != nil {
		if err := d.DB.StartRun(id, started); err != nil {
			logrus.WithError(err).Warn("record deploy run start")
		}
	}

	result := d.steps()

	d.mu.Lock()
	d.status.Running = false
	d.status.Result = result
	logText := strings.Join(d.status.Log, "\n")
	d.mu.Unlock()

	metrics.DeploysTotal.WithLabelValues(result).Inc()
	if d.DB != nil {
		if err := d.DB.FinishRun(id, result, logText, time.Now()); err != nil {
			logrus.WithError(err).Warn("record deploy run finish")
		}
	}
	logrus.WithFields(logrus.Fields{"run": id, "result": result}).Info("deploy finished")
}

// steps executes the workflow and returns the terminal result. Each
// failure is terminal for the run but leaves completed side effects (an
// export tree, a local commit) in place.
func (d *Deployer) steps() string {
	d.appendLog("Сборка статического сайта...")
	ctx, cancel := context.WithTimeout(context.Background(), d.ExportTimeout)
	err := d.Exporter.Export(ctx)
	cancel()
	if errors.Is(err, context.DeadlineExceeded) {
		d.appendLog("Таймаут сборки")
		return model.DeployResultError
	}
	if err != nil {
		d.appendLog(fmt.Sprintf("Ошибка сборки: %v", err))
		return model.DeployResultError
	}
	d.appendLog("Сборка завершена")

	d.appendLog("Коммит изменений...")
	if out, err := d.git(context.Background(), "add", "-A"); err != nil {
		d.appendLog(fmt.Sprintf("Ошибка git add:\n%s", out))
		return model.DeployResultError
	}

	// Ask git whether there is anything to commit instead of pattern
	// matching the commit output.
	out, err := d.git(context.Background(), "status", "--porcelain")
	if err != nil {
		d.appendLog(fmt.Sprintf("Ошибка git status:\n%s", out))
		return model.DeployResultError
	}
	if strings.TrimSpace(out) == "" {
		d.appendLog("Нет изменений для коммита")
	} else {
		msg := "Обновление контента — " + time.Now().Format("2006-01-02 15:04")
		if out, err := d.git(context.Background(), "commit", "-m", msg); err != nil {
			d.appendLog(fmt.Sprintf("Ошибка git commit:\n%s", out))
			return model.DeployResultError
		}
		d.appendLog("Изменения закоммичены")
	}

	d.appendLog("Отправка в удалённый репозиторий...")
	pushCtx, cancel := context.WithTimeout(context.Background(), d.PushTimeout)
	defer cancel()
	out, err = d.git(pushCtx, "push", "-u", d.Remote, "HEAD:"+d.Branch)
	if errors.Is(pushCtx.Err(), context.DeadlineExceeded) {
		d.appendLog("Таймаут git push")
		return model.DeployResultError
	}
	if err != nil {
		d.appendLog(fmt.Sprintf("Ошибка git push:\n%s", out))
		return model.DeployResultError
	}
	d.appendLog("Отправлено")
	d.appendLog("Деплой завершён")
	return model.DeployResultSuccess
}

// git runs one git command in the repo directory and returns its combined
// output.
func (d *Deployer) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = d.RepoDir
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func (d *Deployer) appendLog(line string) {
	d.mu.Lock()
	d.status.Log = append(d.status.Log, line)
	d.mu.Unlock()
}
