package dashboard

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Web Knowledge Aggregator</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: 'Inter', -apple-system, system-ui, sans-serif; background: #0f172a; color: #e2e8f0; min-height: 100vh; }
        .header { background: linear-gradient(135deg, #1e293b, #334155); padding: 1.5rem 2rem; border-bottom: 1px solid #475569; display: flex; justify-content: space-between; align-items: center; }
        .header h1 { font-size: 1.5rem; background: linear-gradient(135deg, #38bdf8, #818cf8); background-clip: text; -webkit-background-clip: text; -webkit-text-fill-color: transparent; }
        .header .status { padding: 0.5rem 1rem; border-radius: 9999px; font-size: 0.875rem; font-weight: 600; }
        .status.running { background: #166534; color: #4ade80; }
        .status.idle { background: #854d0e; color: #fde047; }
        .status.invalid { background: #991b1b; color: #fca5a5; }
        .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(240px, 1fr)); gap: 1rem; padding: 2rem 2rem 0; }
        .card { background: #1e293b; border: 1px solid #334155; border-radius: 12px; padding: 1.5rem; }
        .card .label { font-size: 0.75rem; text-transform: uppercase; letter-spacing: 0.05em; color: #94a3b8; margin-bottom: 0.5rem; }
        .card .value { font-size: 1.25rem; font-weight: 700; color: #f1f5f9; }
        .card.accent { border-color: #38bdf8; }
        .card.success { border-color: #4ade80; }
        .card.error { border-color: #f87171; }
        .panel { margin: 2rem; background: #1e293b; border: 1px solid #334155; border-radius: 12px; padding: 1.5rem; }
        .panel h2 { font-size: 1rem; margin-bottom: 1rem; color: #cbd5e1; }
        input, textarea { width: 100%; background: #0f172a; color: #e2e8f0; border: 1px solid #475569; border-radius: 8px; padding: 0.6rem; margin-bottom: 0.75rem; font: inherit; }
        button { background: #38bdf8; color: #0f172a; border: none; border-radius: 8px; padding: 0.6rem 1.2rem; font-weight: 600; cursor: pointer; }
        button:disabled { opacity: 0.5; cursor: not-allowed; }
        .bar { height: 10px; background: #334155; border-radius: 9999px; overflow: hidden; margin: 0.75rem 0; }
        .bar div { height: 100%; width: 0; background: linear-gradient(90deg, #38bdf8, #818cf8); transition: width 0.3s; }
        pre { white-space: pre-wrap; background: #0f172a; padding: 1rem; border-radius: 8px; margin-top: 0.75rem; }
        a { color: #38bdf8; }
        li { margin: 0.35rem 0 0.35rem 1.25rem; }
        .footer { text-align: center; padding: 1rem; color: #475569; font-size: 0.75rem; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Web Knowledge Aggregator</h1>
        {{if .Status.ConfigValid}}<span class="status idle" id="status">Idle</span>{{else}}<span class="status invalid" id="status">Config invalid</span>{{end}}
    </div>
    <div class="grid">
        <div class="card {{if .Status.ConfigValid}}success{{else}}error{{end}}"><div class="label">Configuration</div><div class="value">{{if .Status.ConfigValid}}Valid{{else}}{{.Status.ConfigError}}{{end}}</div></div>
        <div class="card accent"><div class="label">Summarization</div><div class="value">{{.Status.Components.Engine}} ({{.Status.AI.Provider}})</div></div>
        <div class="card"><div class="label">Deployment</div><div class="value">{{.Status.AI.Deployment}}</div></div>
        <div class="card"><div class="label">Max Results</div><div class="value">{{.Status.MaxResults}}</div></div>
        <div class="card"><div class="label">Output</div><div class="value">{{.Status.OutputDir}}</div></div>
    </div>

    <div class="panel">
        <h2>Single topic</h2>
        <form id="single">
            <input name="topic" placeholder="e.g. AI in healthcare" required>
            <input name="max_results" type="number" min="1" max="50" value="{{.Status.MaxResults}}">
            <input name="filename" placeholder="Optional report filename">
            <button type="submit">Run</button>
        </form>
    </div>

    <div class="panel">
        <h2>Multiple topics (one per line)</h2>
        <form id="batch">
            <textarea name="topics" rows="4"></textarea>
            <input name="max_results" type="number" min="1" max="50" value="{{.Status.MaxResults}}">
            <button type="submit">Run batch</button>
        </form>
    </div>

    <div class="panel" id="progress" hidden>
        <h2 id="progress-label">Starting...</h2>
        <div class="bar"><div id="progress-bar"></div></div>
        <div id="results"></div>
    </div>

    <div class="panel">
        <h2>Recent reports</h2>
        <ul id="reports">
        {{range .Reports}}<li><a href="/reports/{{.Name}}">{{.Name}}</a> <small>{{.ModTime.Format "2006-01-02 15:04"}}</small></li>
        {{else}}<li>No reports yet.</li>{{end}}
        </ul>
    </div>

    <div class="footer">Web Knowledge Aggregator {{.Status.Version}}</div>
    <script>
        const base = p => p.split(/[\\/]/).pop();
        function esc(s) { const d = document.createElement('div'); d.textContent = s || ''; return d.innerHTML; }

        async function start(body) {
            const r = await fetch('/api/runs', { method: 'POST', headers: { 'Content-Type': 'application/json' }, body: JSON.stringify(body) });
            const d = await r.json();
            if (!r.ok) { alert(d.error || 'request failed'); return; }
            document.getElementById('progress').hidden = false;
            document.querySelectorAll('button').forEach(b => b.disabled = true);
            poll(d.id);
        }

        async function poll(id) {
            const r = await fetch('/api/runs/' + id);
            const d = await r.json();
            document.getElementById('progress-bar').style.width = d.progress + '%';
            document.getElementById('progress-label').textContent = d.status === 'running'
                ? 'Processing "' + (d.current_topic || '') + '": ' + (d.stage || 'starting') + ' (' + d.progress + '%)'
                : 'Finished: ' + d.status;
            document.getElementById('status').textContent = d.status === 'running' ? 'Running' : 'Idle';
            document.getElementById('status').className = 'status ' + (d.status === 'running' ? 'running' : 'idle');
            document.getElementById('results').innerHTML = (d.results || []).map(res => res.status === 'completed'
                ? '<h2>' + esc(res.topic) + '</h2><a href="/reports/' + encodeURIComponent(base(res.report_path)) + '">Markdown</a> | <a href="/reports/' + encodeURIComponent(base(res.json_path)) + '">JSON</a><pre>' + esc(res.quick_summary) + '</pre>'
                : '<h2>' + esc(res.topic) + '</h2><pre>Failed: ' + esc(res.error) + '</pre>').join('');
            if (d.status === 'running') { setTimeout(() => poll(id), 1000); return; }
            document.querySelectorAll('button').forEach(b => b.disabled = false);
        }

        document.getElementById('single').addEventListener('submit', e => {
            e.preventDefault();
            const f = new FormData(e.target);
            start({ topic: f.get('topic'), max_results: Number(f.get('max_results')) || 0, filename: f.get('filename') });
        });
        document.getElementById('batch').addEventListener('submit', e => {
            e.preventDefault();
            const f = new FormData(e.target);
            start({ topics: String(f.get('topics')).split('\n'), max_results: Number(f.get('max_results')) || 0 });
        });
    </script>
</body>
</html>`
