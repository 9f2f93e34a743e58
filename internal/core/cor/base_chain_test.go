// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cor_test

import (
	"errors"
	"testing"

	"github.com/jaycherian/gcp-go-video-annotate/internal/core/cor"
	"github.com/stretchr/testify/assert"
)

// appendCommand appends its suffix to the string input and emits the result.
type appendCommand struct {
	cor.BaseCommand
	suffix string
	ran    *[]string
}

func newAppendCommand(name, suffix string, ran *[]string) *appendCommand {
	return &appendCommand{BaseCommand: *cor.NewBaseCommand(name), suffix: suffix, ran: ran}
}

func (c *appendCommand) Execute(context cor.Context) {
	*c.ran = append(*c.ran, c.GetName())
	in := context.Get(c.GetInputParam()).(string)
	context.Add(c.GetOutputParam(), in+c.suffix)
}

// failCommand always records an error.
type failCommand struct {
	cor.BaseCommand
	ran *[]string
}

func (c *failCommand) Execute(context cor.Context) {
	*c.ran = append(*c.ran, c.GetName())
	c.Fail(context, errors.New("boom"))
}

// sinkCommand captures its input without producing output.
type sinkCommand struct {
	cor.BaseCommand
	got *string
}

func (c *sinkCommand) Execute(context cor.Context) {
	*c.got = context.Get(c.GetInputParam()).(string)
}

func TestChainPipesOutputToInput(t *testing.T) {
	var ran []string
	var got string
	chain := cor.NewBaseChain("pipe")
	chain.AddCommand(newAppendCommand("a", "-a", &ran))
	chain.AddCommand(newAppendCommand("b", "-b", &ran))
	chain.AddCommand(&sinkCommand{BaseCommand: *cor.NewBaseCommand("sink"), got: &got})

	chCtx := cor.NewBaseContext()
	chCtx.Add(cor.CtxIn, "video")
	chain.Execute(chCtx)

	assert.False(t, chCtx.HasErrors())
	assert.Equal(t, []string{"a", "b"}, ran)
	assert.Equal(t, "video-a-b", got)
	assert.Nil(t, chCtx.Err())
}

func TestChainStopsAfterFailure(t *testing.T) {
	var ran []string
	chain := cor.NewBaseChain("stop")
	chain.AddCommand(&failCommand{BaseCommand: *cor.NewBaseCommand("fail"), ran: &ran})
	chain.AddCommand(newAppendCommand("after", "-x", &ran))

	chCtx := cor.NewBaseContext()
	chCtx.Add(cor.CtxIn, "video")
	chain.Execute(chCtx)

	assert.True(t, chCtx.HasErrors())
	assert.Equal(t, []string{"fail"}, ran)
	assert.ErrorContains(t, chCtx.Err(), "fail: boom")
}

func TestChainContinueOnFailure(t *testing.T) {
	var ran []string
	chain := cor.NewBaseChain("continue")
	chain.ContinueOnFailure(true)
	chain.AddCommand(newAppendCommand("first", "-1", &ran))
	chain.AddCommand(&failCommand{BaseCommand: *cor.NewBaseCommand("fail"), ran: &ran})
	chain.AddCommand(newAppendCommand("last", "-2", &ran))

	chCtx := cor.NewBaseContext()
	chCtx.Add(cor.CtxIn, "video")
	chain.Execute(chCtx)

	// The failing command emits nothing, so the last command has no input
	// and is skipped rather than failing.
	assert.Equal(t, []string{"first", "fail"}, ran)
	assert.Len(t, chCtx.GetErrors(), 1)
}

func TestChainSkipsCommandWithoutInput(t *testing.T) {
	var ran []string
	chain := cor.NewBaseChain("skip")
	chain.AddCommand(newAppendCommand("needs-input", "-a", &ran))

	chCtx := cor.NewBaseContext()
	chain.Execute(chCtx)

	assert.Empty(t, ran)
	assert.False(t, chCtx.HasErrors())
}

func TestContextCloseRemovesTempFiles(t *testing.T) {
	dir := t.TempDir()
	chCtx := cor.NewBaseContext()
	chCtx.AddTempFile(dir + "/does-not-exist.json")
	chCtx.Close()
	assert.Empty(t, chCtx.GetTempFiles())
}
