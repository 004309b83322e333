package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"listing-manager/utils"
)

const usage = "Usage: service start|stop|reload|restart|status [server flags...]"

// stopTimeout covers the server's graceful shutdown window.
const stopTimeout = 15 * time.Second

var errNotRunning = errors.New("listing-manager is not running")

// pidFile tracks the server process started by this wrapper.
type pidFile struct {
	path string
}

func (p pidFile) read() (int, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, errNotRunning
	}
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("corrupt pid file %s", p.path)
	}
	return pid, nil
}

func (p pidFile) write(pid int) error {
	if err := utils.EnsureDirExists(filepath.Dir(p.path)); err != nil {
		return err
	}
	return os.WriteFile(p.path, []byte(strconv.Itoa(pid)+"\n"), 0644)
}

func (p pidFile) remove() {
	os.Remove(p.path)
}

// running returns the recorded pid when that process is still alive. A pid
// file left behind by a crashed server is removed.
func (p pidFile) running() (int, error) {
	pid, err := p.read()
	if err != nil {
		return 0, err
	}
	if !alive(pid) {
		p.remove()
		return 0, errNotRunning
	}
	return pid, nil
}

func alive(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}

type service struct {
	pid    pidFile
	binary string
}

func (s service) start(args []string) error {
	if pid, err := s.pid.running(); err == nil {
		return fmt.Errorf("listing-manager already running, pid=%d", pid)
	}
	cmd := exec.Command(s.binary, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", s.binary, err)
	}
	if err := s.pid.write(cmd.Process.Pid); err != nil {
		return fmt.Errorf("started pid=%d but could not record it: %w", cmd.Process.Pid, err)
	}
	fmt.Printf("listing-manager started, pid=%d\n", cmd.Process.Pid)
	return nil
}

// stop sends SIGTERM and waits for the process to exit.
func (s service) stop() error {
	pid, err := s.pid.running()
	if err != nil {
		return err
	}
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to stop pid=%d: %w", pid, err)
	}
	deadline := time.Now().Add(stopTimeout)
	for alive(pid) {
		if time.Now().After(deadline) {
			return fmt.Errorf("pid=%d still running after %s", pid, stopTimeout)
		}
		time.Sleep(100 * time.Millisecond)
	}
	s.pid.remove()
	fmt.Println("listing-manager stopped.")
	return nil
}

func (s service) reload() error {
	pid, err := s.pid.running()
	if err != nil {
		return err
	}
	if err := syscall.Kill(pid, syscall.SIGHUP); err != nil {
		return fmt.Errorf("failed to reload pid=%d: %w", pid, err)
	}
	fmt.Println("listing-manager reloaded.")
	return nil
}

func (s service) status() error {
	pid, err := s.pid.running()
	if err != nil {
		return err
	}
	fmt.Printf("listing-manager running, pid=%d\n", pid)
	return nil
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}
	root := utils.GetProjectRoot()
	s := service{
		pid:    pidFile{path: filepath.Join(root, "pid", "listing-manager.pid")},
		binary: filepath.Join(root, "bin", "listing-manager"),
	}

	var err error
	switch os.Args[1] {
	case "start":
		err = s.start(os.Args[2:])
	case "stop":
		err = s.stop()
	case "reload":
		err = s.reload()
	case "status":
		err = s.status()
	case "restart":
		if err = s.stop(); errors.Is(err, errNotRunning) {
			err = nil
		}
		if err == nil {
			err = s.start(os.Args[2:])
		}
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
