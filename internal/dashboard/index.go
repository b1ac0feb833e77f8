package dashboard

// indexHTML is the polling field-monitor view: latest values, status, and
// time-series charts with fixed threshold reference lines. Refreshes every
// 30 seconds.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Harvest-Guard: Field Monitor</title>
<style>
	body { font-family: sans-serif; margin: 2rem; background: #fafaf5; }
	h1 { margin-bottom: 0; }
	.kpis { display: flex; gap: 2rem; margin: 1.5rem 0; }
	.kpi { background: #fff; border: 1px solid #ddd; border-radius: 8px; padding: 1rem 1.5rem; }
	.kpi .label { color: #777; font-size: .8rem; }
	.kpi .value { font-size: 1.6rem; }
	canvas { background: #fff; border: 1px solid #ddd; border-radius: 8px; display: block; margin-bottom: 1.5rem; }
</style>
</head>
<body>
<h1>🚜 Harvest-Guard: Field Monitor</h1>
<p><b>Location:</b> Lviv, Ukraine (Sensor Node 01)</p>
<div class="kpis">
	<div class="kpi"><div class="label">Air Temperature</div><div class="value" id="temp">–</div></div>
	<div class="kpi"><div class="label">Soil Moisture</div><div class="value" id="moist">–</div></div>
	<div class="kpi"><div class="label">System Status</div><div class="value" id="status">–</div></div>
	<div class="kpi"><div class="label">Last Update</div><div class="value" id="updated">–</div></div>
</div>
<h3>Temperature Trend (°C)</h3>
<canvas id="tempChart" width="900" height="220"></canvas>
<h3>Soil Moisture Content (0.0 – 1.0)</h3>
<canvas id="moistChart" width="900" height="220"></canvas>
<script>
function drawSeries(id, points, threshold) {
	const c = document.getElementById(id), ctx = c.getContext('2d');
	ctx.clearRect(0, 0, c.width, c.height);
	if (points.length < 2) return;
	const pad = 20;
	const min = Math.min(...points, threshold), max = Math.max(...points, threshold);
	const span = (max - min) || 1;
	const x = i => pad + i * (c.width - 2 * pad) / (points.length - 1);
	const y = v => c.height - pad - (v - min) * (c.height - 2 * pad) / span;
	ctx.strokeStyle = '#c33'; ctx.setLineDash([6, 4]);
	ctx.beginPath(); ctx.moveTo(pad, y(threshold)); ctx.lineTo(c.width - pad, y(threshold)); ctx.stroke();
	ctx.setLineDash([]); ctx.strokeStyle = '#269';
	ctx.beginPath();
	points.forEach((v, i) => i ? ctx.lineTo(x(i), y(v)) : ctx.moveTo(x(i), y(v)));
	ctx.stroke();
}
async function refresh() {
	const s = await (await fetch('/api/summary')).json();
	document.getElementById('temp').textContent = s.temperature + '°C';
	document.getElementById('moist').textContent = (s.moisture * 100).toFixed(1) + '%';
	document.getElementById('status').textContent = s.status;
	document.getElementById('updated').textContent = new Date(s.last_update).toLocaleTimeString();
	const d = await (await fetch('/api/readings')).json();
	drawSeries('tempChart', d.rows.map(r => r.temperature), d.thresholds.freezing_point);
	drawSeries('moistChart', d.rows.map(r => r.moisture), d.thresholds.drought_threshold);
}
refresh();
setInterval(refresh, 30000);
</script>
</body>
</html>`
