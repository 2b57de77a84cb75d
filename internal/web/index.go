package web

// indexHTML is the single-page wallet UI. It renders the SSE wallet stream
// and drives the operation API with plain fetch calls.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>tonpocket</title>
<style>
  body { margin: 0; background: #0f172a; color: #e2e8f0; font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; }
  .app { max-width: 430px; margin: 0 auto; padding: 16px; }
  .total { text-align: center; margin: 24px 0; }
  .total h1 { font-size: 2.2rem; margin: 0; }
  .total p { color: #94a3b8; font-size: 0.85rem; margin: 6px 0 0; }
  .actions { display: flex; gap: 12px; justify-content: center; margin-bottom: 24px; }
  .actions button { background: #1e293b; color: #60a5fa; border: 1px solid #334155; border-radius: 12px; padding: 10px 16px; cursor: pointer; }
  .actions button:disabled { opacity: 0.4; cursor: default; }
  .asset { display: flex; justify-content: space-between; padding: 12px; border-radius: 12px; }
  .asset:hover { background: #1e293b; }
  .asset .meta { color: #94a3b8; font-size: 0.8rem; }
  .up { color: #4ade80; } .down { color: #f87171; }
  #toast { position: fixed; top: 16px; left: 50%; transform: translateX(-50%); background: #1e293b; border: 1px solid #14532d; border-radius: 12px; padding: 12px 20px; display: none; }
  #error { color: #f87171; font-size: 0.85rem; min-height: 1.2em; text-align: center; }
  form { background: #1e293b; border-radius: 12px; padding: 12px; margin-top: 12px; display: none; }
  form.open { display: block; }
  input, select { width: 100%; box-sizing: border-box; margin: 4px 0; padding: 8px; background: #0f172a; color: #e2e8f0; border: 1px solid #334155; border-radius: 8px; }
  form button { width: 100%; margin-top: 8px; padding: 10px; background: #2563eb; color: white; border: none; border-radius: 8px; cursor: pointer; }
</style>
</head>
<body>
<div class="app">
  <div class="total"><h1 id="total">&hellip;</h1><p id="subtitle">Total balance in RUB</p>
    <button id="hide" style="background:none;border:none;color:#64748b;cursor:pointer">hide</button></div>
  <div class="actions">
    <button onclick="toggle('deposit')">Deposit</button>
    <button onclick="toggle('withdraw')">Withdraw</button>
    <button onclick="toggle('swap')">Swap</button>
  </div>
  <form id="deposit"><input name="amount" placeholder="Amount (USD)">
    <select name="method"></select><button type="submit">Deposit</button></form>
  <form id="withdraw"><select name="asset_id"></select><input name="amount" placeholder="Amount">
    <input name="address" placeholder="Destination address"><button type="submit">Withdraw</button></form>
  <form id="swap"><select name="from_id"></select><select name="to_id"></select>
    <input name="amount" placeholder="Amount"><button type="submit">Swap</button></form>
  <div id="error"></div>
  <div id="assets"></div>
</div>
<div id="toast"></div>
<script>
let assets = [];
function toggle(id) {
  document.querySelectorAll('form').forEach(f => f.classList.toggle('open', f.id === id && !f.classList.contains('open')));
}
function render(snap) {
  document.getElementById('total').textContent = snap.total_display;
  if (snap.nickname) document.getElementById('subtitle').textContent = '@' + snap.nickname + ' — Total balance in RUB';
  assets = snap.assets;
  document.getElementById('assets').innerHTML = snap.assets.map(a =>
    '<div class="asset"><div><b>' + a.name + '</b><div class="meta">$' + a.price_usd +
    ' <span class="' + (parseFloat(a.change_24h) >= 0 ? 'up' : 'down') + '">' + a.change_24h + '%</span></div></div>' +
    '<div style="text-align:right"><b>' + a.balance + '</b><div class="meta">' + a.value_usd + '</div></div></div>').join('');
  document.querySelectorAll('select[name=asset_id],select[name=from_id],select[name=to_id]').forEach(sel => {
    const prev = sel.value;
    sel.innerHTML = snap.assets.map(a => '<option value="' + a.id + '">' + a.symbol + '</option>').join('');
    if (prev) sel.value = prev;
  });
}
const ws = new EventSource('/wallet/stream');
ws.addEventListener('wallet', e => render(JSON.parse(e.data)));
const ns = new EventSource('/notifications/stream');
ns.addEventListener('notification', e => {
  const n = JSON.parse(e.data);
  const toast = document.getElementById('toast');
  toast.textContent = n.message;
  toast.style.display = n.visible ? 'block' : 'none';
});
fetch('/api/methods').then(r => r.json()).then(ms => {
  document.querySelector('select[name=method]').innerHTML =
    ms.map(m => '<option value="' + m.id + '">' + m.name + '</option>').join('');
});
document.getElementById('hide').onclick = () => fetch('/api/hidden/toggle', {method: 'POST'});
document.querySelectorAll('form').forEach(f => f.onsubmit = async e => {
  e.preventDefault();
  const body = Object.fromEntries(new FormData(f).entries());
  const btn = f.querySelector('button'); btn.disabled = true;
  const resp = await fetch('/api/' + f.id, {method: 'POST', headers: {'Content-Type': 'application/json'}, body: JSON.stringify(body)});
  btn.disabled = false;
  const errBox = document.getElementById('error');
  if (resp.ok) { errBox.textContent = ''; f.reset(); f.classList.remove('open'); }
  else { const err = await resp.json(); errBox.textContent = err.error; }
});
</script>
</body>
</html>`
