// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/graphdemo/internal/errors"
)

const bashCompletionTemplate = `#!/bin/bash

# Bash completion script for graphdemo
# Installation:
#   source <(graphdemo completion bash)

_graphdemo_completion() {
    local cur prev commands datasets
    commands="shell run query sessions reset config completion"
    datasets="msmarco ldbc lastfm mnist"

    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    if [[ ${prev} == --dataset ]] ; then
        COMPREPLY=( $(compgen -W "${datasets}" -- ${cur}) )
        return 0
    fi
    if [[ ${prev} == --storage ]] ; then
        COMPREPLY=( $(compgen -W "rocksdb sqlite mem" -- ${cur}) )
        return 0
    fi

    if [ $COMP_CWORD -eq 1 ]; then
        if [[ ${cur} == -* ]] ; then
            COMPREPLY=( $(compgen -W "--version --config --json --no-color --quiet --buffer-pool-mb --threads --storage --temp-dir --dataset-dir --cleanup --log-level --log-format --metrics-addr --debug" -- ${cur}) )
        else
            COMPREPLY=( $(compgen -W "${commands}" -- ${cur}) )
        fi
        return 0
    fi

    local cmd="${COMP_WORDS[1]}"
    case "${cmd}" in
        run)
            COMPREPLY=( $(compgen -W "--dataset --bench --timeout" -- ${cur}) )
            ;;
        query)
            COMPREPLY=( $(compgen -W "--json --session --read-only --timeout" -- ${cur}) )
            ;;
        sessions)
            COMPREPLY=( $(compgen -W "--json" -- ${cur}) )
            ;;
        reset)
            COMPREPLY=( $(compgen -W "--yes --session" -- ${cur}) )
            ;;
        config)
            COMPREPLY=( $(compgen -W "--write --force" -- ${cur}) )
            ;;
        completion)
            if [ $COMP_CWORD -eq 2 ]; then
                COMPREPLY=( $(compgen -W "bash zsh fish" -- ${cur}) )
            fi
            ;;
    esac
}

complete -F _graphdemo_completion graphdemo
`

const zshCompletionTemplate = `#compdef graphdemo

# Zsh completion script for graphdemo
# Installation:
#   graphdemo completion zsh > "${fpath[1]}/_graphdemo"

_graphdemo() {
    local -a commands
    commands=(
        'shell:Interactive session'
        'run:Initialize, load a dataset and optionally benchmark it'
        'query:Run one statement'
        'sessions:List session directories'
        'reset:Delete session directories'
        'config:Print or write the effective configuration'
        'completion:Generate shell completion script'
    )

    _arguments -C \
        '(- *)--version[Show version and exit]' \
        '--config[Path to graphdemo.yaml]:config file:_files -g "*.yaml"' \
        '--json[Output as JSON]' \
        '--no-color[Disable colored output]' \
        '--storage[Storage engine]:storage:(rocksdb sqlite mem)' \
        '--dataset-dir[Dataset directory]:directory:_files -/' \
        '--metrics-addr[Prometheus metrics address]:address:' \
        '1: :->command' \
        '*:: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                run)
                    _arguments \
                        '--dataset[Dataset]:dataset:(msmarco ldbc lastfm mnist)' \
                        '--bench[Run the benchmark after loading]' \
                        '--timeout[Give up after]:duration:'
                    ;;
                query)
                    _arguments \
                        '--json[Output as JSON]' \
                        '--session[Session id]:session:' \
                        '--read-only[Open read-only]' \
                        '1:statement:'
                    ;;
                reset)
                    _arguments \
                        '--yes[Confirm the reset]' \
                        '--session[Session id]:session:'
                    ;;
                config)
                    _arguments \
                        '--write[Write to path]:file:_files' \
                        '--force[Overwrite an existing file]'
                    ;;
                completion)
                    _arguments \
                        '1:shell:(bash zsh fish)'
                    ;;
            esac
            ;;
    esac
}

_graphdemo
`

const fishCompletionTemplate = `# Fish completion script for graphdemo
# Installation:
#   graphdemo completion fish > ~/.config/fish/completions/graphdemo.fish

complete -c graphdemo -f -n "__fish_use_subcommand" -a "shell" -d "Interactive session"
complete -c graphdemo -f -n "__fish_use_subcommand" -a "run" -d "Initialize, load and benchmark a dataset"
complete -c graphdemo -f -n "__fish_use_subcommand" -a "query" -d "Run one statement"
complete -c graphdemo -f -n "__fish_use_subcommand" -a "sessions" -d "List session directories"
complete -c graphdemo -f -n "__fish_use_subcommand" -a "reset" -d "Delete session directories (destructive!)"
complete -c graphdemo -f -n "__fish_use_subcommand" -a "config" -d "Print or write the effective configuration"
complete -c graphdemo -f -n "__fish_use_subcommand" -a "completion" -d "Generate shell completion script"

complete -c graphdemo -l version -d "Show version and exit"
complete -c graphdemo -l config -d "Path to graphdemo.yaml" -r
complete -c graphdemo -l json -d "Output as JSON"
complete -c graphdemo -l storage -d "Storage engine" -xa "rocksdb sqlite mem"
complete -c graphdemo -l dataset-dir -d "Dataset directory" -r

complete -c graphdemo -n "__fish_seen_subcommand_from run" -l dataset -d "Dataset" -xa "msmarco ldbc lastfm mnist"
complete -c graphdemo -n "__fish_seen_subcommand_from run" -l bench -d "Run the benchmark after loading"
complete -c graphdemo -n "__fish_seen_subcommand_from query" -l session -d "Session id" -r
complete -c graphdemo -n "__fish_seen_subcommand_from query" -l read-only -d "Open read-only"
complete -c graphdemo -n "__fish_seen_subcommand_from reset" -l yes -d "Confirm the reset"
complete -c graphdemo -n "__fish_seen_subcommand_from config" -l write -d "Write to path" -r
complete -c graphdemo -n "__fish_seen_subcommand_from config" -l force -d "Overwrite an existing file"

complete -c graphdemo -n "__fish_seen_subcommand_from completion" -f -a "bash zsh fish"
`

func runCompletion(a *app, args []string) error {
	fs := flag.NewFlagSet("completion", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, `Usage: graphdemo completion <shell>

Generates a completion script for bash, zsh or fish.

Examples:
  source <(graphdemo completion bash)
  graphdemo completion zsh > "${fpath[1]}/_graphdemo"
  graphdemo completion fish > ~/.config/fish/completions/graphdemo.fish
`)
	}
	if ok, err := parseArgs(a, fs, args); !ok {
		return err
	}
	if fs.NArg() != 1 {
		return errors.NewInputError(
			"Invalid arguments",
			"The completion command requires exactly one argument: the shell name",
			"Run 'graphdemo completion bash', 'graphdemo completion zsh', or 'graphdemo completion fish'",
		)
	}

	var script string
	switch shell := fs.Arg(0); shell {
	case "bash":
		script = bashCompletionTemplate
	case "zsh":
		script = zshCompletionTemplate
	case "fish":
		script = fishCompletionTemplate
	default:
		return errors.NewInputError(
			"Unsupported shell",
			fmt.Sprintf("Shell '%s' is not supported. Valid options: bash, zsh, fish", shell),
			"Run 'graphdemo completion bash', 'graphdemo completion zsh', or 'graphdemo completion fish'",
		)
	}
	_, err := fmt.Fprint(a.stdout, script)
	return err
}
