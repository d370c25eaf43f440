package main

import (
	"fmt"
	"os"

	"git.lost.host/meutraa/notefall/internal/config"
)

func main() {
	if err := run(); nil != err {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadEnv()
	c, err := config.Parse(os.Args[1:])
	if nil != err {
		return err
	}

	p := &Program{Config: c}
	if err := p.Init(); nil != err {
		p.Close()
		return err
	}
	defer p.Close()

	if err := p.Run(); nil != err {
		return err
	}
	fmt.Println(p.Summary())
	return nil
}
