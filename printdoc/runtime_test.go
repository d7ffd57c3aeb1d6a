package printdoc

import (
	"strconv"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/carteira"
)

// browserStub is a minimal window and document for runtime.js. Timers are
// queued on a virtual clock that the test advances one timer at a time.
const browserStub = `
var window = this;
var __now = 0, __seq = 0, __timers = [];
var __log = { prints: [], closes: [], saves: [] };

function setTimeout(fn, ms) {
  var id = ++__seq;
  __timers.push({ id: id, at: __now + (ms > 0 ? ms : 0), fn: fn });
  return id;
}
function clearTimeout(id) {
  __timers = __timers.filter(function (t) { return t.id !== id; });
}
function __fire() {
  if (!__timers.length) {
    return false;
  }
  __timers.sort(function (a, b) { return a.at - b.at || a.id - b.id; });
  var t = __timers.shift();
  __now = t.at;
  t.fn();
  return true;
}
function __target(obj) {
  var handlers = {};
  obj.addEventListener = function (name, fn) {
    (handlers[name] = handlers[name] || []).push(fn);
  };
  obj.removeEventListener = function (name, fn) {
    handlers[name] = (handlers[name] || []).filter(function (f) { return f !== fn; });
  };
  obj.__emit = function (name) {
    (handlers[name] || []).slice().forEach(function (f) { f(); });
  };
  return obj;
}

__target(window);
window.print = function () { __log.prints.push(__now); };
window.close = function () { __log.closes.push(__now); };

var __classes = {};
var __root = {
  attrs: {},
  setAttribute: function (k, v) { this.attrs[k] = v; },
  classList: {
    add: function (c) { __classes[c] = true; },
    remove: function (c) { delete __classes[c]; },
    contains: function (c) { return !!__classes[c]; }
  }
};
var __ipTargets = [{ textContent: '' }];
var __pages = [{ offsetWidth: 605, offsetHeight: 378 }];
var __buttons = ['print', 'download', 'close'].map(function (action) {
  return __target({ getAttribute: function () { return action; } });
});

var document = {
  readyState: 'complete',
  documentElement: __root,
  images: [],
  getElementById: function (id) {
    return id === 'carteira-config' ? { textContent: __config } : null;
  },
  querySelectorAll: function (sel) {
    if (sel === '[data-client-ip]') {
      return __ipTargets;
    }
    if (sel === '[data-action]') {
      return __toolbar ? __buttons : [];
    }
    return __pages;
  }
};
`

const (
	jsPDFWorking = `
window.html2canvas = function () {
  return Promise.resolve({ toDataURL: function () { return 'data:image/jpeg;base64,'; } });
};
window.jspdf = { jsPDF: function () {
  this.internal = { pageSize: {
    getWidth: function () { return 210; },
    getHeight: function () { return 297; }
  } };
  this.addPage = function () {};
  this.addImage = function () {};
  this.save = function (name) { __log.saves.push(name); };
} };
`
	canvasRejects = jsPDFWorking + `
window.html2canvas = function () { return Promise.reject(new Error('tainted canvas')); };
`
	jsPDFThrows = jsPDFWorking + `
window.jspdf = { jsPDF: function () { throw new Error('boom'); } };
`
	ipLookupHangs = `
window.fetch = function () { return new Promise(function () {}); };
`
	ipLookupAnswers = `
window.fetch = function () {
  return Promise.resolve({ json: function () { return Promise.resolve({ ip: '203.0.113.7' }); } });
};
`
)

type browser struct {
	t    *testing.T
	vm   *goja.Runtime
	fire goja.Callable
}

// openDocument loads the runtime configured by opts into a stub browser,
// after running setup, and lets its timers run out.
func openDocument(t *testing.T, setup string, opts ...carteira.Option) *browser {
	t.Helper()
	cfg := carteira.NewExportConfig(opts...)

	vm := goja.New()
	require.NoError(t, vm.Set("__config", string(configJSON(cfg))))
	require.NoError(t, vm.Set("__toolbar", cfg.Toolbar))
	_, err := vm.RunString(browserStub + setup)
	require.NoError(t, err)

	fire, ok := goja.AssertFunction(vm.Get("__fire"))
	require.True(t, ok)
	b := &browser{t: t, vm: vm, fire: fire}

	_, err = vm.RunString(runtimeJS)
	require.NoError(t, err)
	b.settle()
	return b
}

// settle fires queued timers in order until none remain. Promise jobs run
// between timers.
func (b *browser) settle() {
	b.t.Helper()
	for i := 0; i < 1000; i++ {
		more, err := b.fire(goja.Undefined())
		require.NoError(b.t, err)
		b.eval("void 0")
		if !more.ToBoolean() {
			return
		}
	}
	b.t.Fatal("timers never settled")
}

func (b *browser) eval(expr string) goja.Value {
	b.t.Helper()
	v, err := b.vm.RunString(expr)
	require.NoError(b.t, err)
	return v
}

func (b *browser) click(action string) {
	b.t.Helper()
	b.eval(`__buttons.filter(function (x) { return x.getAttribute() === '` + action + `'; })[0].__emit('click')`)
	b.settle()
}

func (b *browser) state() State {
	return State(b.eval("window.carteiraRuntime.state()").String())
}

func (b *browser) count(list string) int64 {
	return b.eval("__log." + list + ".length").ToInteger()
}

func (b *browser) at(list string, i int) int64 {
	return b.eval("__log." + list + "[" + strconv.Itoa(i) + "]").ToInteger()
}

func TestRuntimeDownloadWithoutJSPDFPrints(t *testing.T) {
	b := openDocument(t, "", carteira.WithMode(carteira.ModeDownload))

	assert.Equal(t, StateClosed, b.state())
	require.EqualValues(t, 1, b.count("prints"))
	assert.LessOrEqual(t, b.at("prints", 0), carteira.DefaultIPLookupTimeout.Milliseconds())
	assert.EqualValues(t, 1, b.count("closes"))
	assert.Equal(t, IPUnavailable, b.eval("__ipTargets[0].textContent").String())
}

func TestRuntimeDownloadSavesPDF(t *testing.T) {
	b := openDocument(t, jsPDFWorking,
		carteira.WithMode(carteira.ModeDownload),
		carteira.WithFileName("carteiras.pdf"),
	)

	assert.Equal(t, StateClosed, b.state())
	assert.Zero(t, b.count("prints"))
	assert.Equal(t, "carteiras.pdf", b.eval("__log.saves[0]").String())
	assert.False(t, b.eval("__root.classList.contains('exporting')").ToBoolean())
	assert.EqualValues(t, 1, b.count("closes"))
}

func TestRuntimeExportFailureFallsBackToPrint(t *testing.T) {
	for name, setup := range map[string]string{
		"rejected rasterization": canvasRejects,
		"throwing constructor":   jsPDFThrows,
	} {
		t.Run(name, func(t *testing.T) {
			b := openDocument(t, setup, carteira.WithMode(carteira.ModeDownload))

			assert.Equal(t, StateClosed, b.state())
			assert.EqualValues(t, 1, b.count("prints"))
			assert.Zero(t, b.count("saves"))
			assert.EqualValues(t, 1, b.count("closes"))
			assert.False(t, b.eval("__root.classList.contains('exporting')").ToBoolean())
		})
	}
}

func TestRuntimeIPLookupIsTimeBoxed(t *testing.T) {
	b := openDocument(t, ipLookupHangs, carteira.WithMode(carteira.ModePrint))

	timeout := carteira.DefaultIPLookupTimeout.Milliseconds()
	assert.Equal(t, IPUnavailable, b.eval("__ipTargets[0].textContent").String())
	require.EqualValues(t, 1, b.count("prints"))
	assert.Equal(t, timeout, b.at("prints", 0))
	assert.Equal(t, StateClosed, b.state())
	assert.Equal(t, timeout+2*carteira.DefaultCloseDelay.Milliseconds(), b.at("closes", 0))
}

func TestRuntimeIPLookupFillsFooter(t *testing.T) {
	b := openDocument(t, ipLookupAnswers, carteira.WithMode(carteira.ModePrint))

	assert.Equal(t, "203.0.113.7", b.eval("__ipTargets[0].textContent").String())
	assert.EqualValues(t, 0, b.at("prints", 0))
}

func TestRuntimeToolbarWaitsForUser(t *testing.T) {
	b := openDocument(t, "", carteira.WithToolbar(true))

	assert.Equal(t, StateReady, b.state())
	assert.Zero(t, b.count("prints"))

	b.click("download")
	assert.EqualValues(t, 1, b.count("prints"), "download without jsPDF prints")
	assert.Equal(t, StateReady, b.state())
	assert.Zero(t, b.count("closes"))

	b.click("print")
	assert.EqualValues(t, 2, b.count("prints"))
	assert.Equal(t, StateReady, b.state())

	b.click("close")
	assert.Equal(t, StateClosed, b.state())
	assert.EqualValues(t, 1, b.count("closes"))
}
