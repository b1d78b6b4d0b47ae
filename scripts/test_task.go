package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// stream 執行指令並逐行交給 line；stdout/stderr 合併（等同 2>&1）
func stream(line func(string), name string, args ...string) error {
	cmd := exec.Command(name, args...)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		line(sc.Text())
	}
	if err := sc.Err(); err != nil {
		PrintRed(fmt.Sprintf("scanner error: %v", err))
	}
	return cmd.Wait()
}

func passthrough(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func colorize(line string) {
	switch {
	case strings.HasPrefix(line, "ok"):
		PrintGreen(line)
	case strings.HasPrefix(line, "FAIL"):
		PrintRed(line)
	default:
		fmt.Println(line)
	}
}

// runTest 只顯示每個套件的 ok/FAIL 與建置失敗
func runTest() error {
	PrintGreen("running tests")
	_ = passthrough("go", "clean", "-testcache")
	err := stream(func(line string) {
		switch {
		case strings.HasPrefix(line, "ok"), strings.HasPrefix(line, "FAIL"):
			colorize(line)
		case strings.Contains(line, "build failed"), strings.Contains(line, "setup failed"):
			PrintRed(line)
		}
	}, "go", "test", "./...", "-cover", "-count=1")
	if err != nil {
		return errors.New("tests finished with errors")
	}
	return nil
}

// runTestAll 全部套件含 race 與 coverage
func runTestAll() error {
	PrintGreen("running tests (race + coverage)")
	if err := passthrough("go", "clean", "-testcache"); err != nil {
		return fmt.Errorf("go clean -testcache failed: %w", err)
	}
	if err := passthrough("go", "test", "./...", "-race", "-cover"); err != nil {
		return errors.New("tests (race + coverage) finished with errors")
	}
	return nil
}

// runTestDetail verbose，略過沒有測試檔的套件
func runTestDetail() error {
	PrintGreen("running tests (detail)")
	if err := passthrough("go", "clean", "-testcache"); err != nil {
		return fmt.Errorf("go clean -testcache failed: %w", err)
	}
	err := stream(func(line string) {
		if !strings.Contains(line, "[no test files]") {
			colorize(line)
		}
	}, "go", "test", "./...", "-v", "-count=1")
	if err != nil {
		return errors.New("tests (detail) finished with errors")
	}
	return nil
}

// runDemo 以內建分析跑一次完整掃描
func runDemo() error {
	PrintGreen("running demo analyses")
	return passthrough("go", "run", "./cmd/run", "-demo", "-all")
}

// runProfile 以 tthh_4b_syst（20000 bins、4 workers）取 CPU profile
func runProfile() error {
	PrintGreen("profiling tthh_4b_syst -> build/profiling/cpu.pprof")
	return passthrough("go", "run", "./cmd/run", "-demo", "-name", "tthh_4b_syst", "-p", "cpu", "-format", "none")
}
